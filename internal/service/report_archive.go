package service

import (
	"bytes"
	"context"
	"encoding/json"
	"ethics_eval_backend/internal/config"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
	"ethics_eval_backend/pkg/logger"
	"ethics_eval_backend/pkg/monitoring"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider stores report snapshots.
type StorageProvider interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	GetURL(key string) string
}

// LocalStorageProvider writes below Config.LocalPath.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *LocalStorageProvider) GetURL(key string) string {
	return "/reports/" + key
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *MinioStorageProvider) GetURL(key string) string {
	return "/" + p.Config.MinioBucket + "/" + key
}

// NewStorageProvider picks MinIO when configured, the local directory
// otherwise.
func NewStorageProvider(cfg *config.StorageConfig) StorageProvider {
	switch cfg.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(cfg)
		if err == nil {
			return p
		}
		logger.Log.Warn("MinIO storage unavailable, falling back to local", zap.Error(err))
	case util.StorageLocal, "":
	default:
		logger.Log.Warn("Unknown storage type, using local", zap.String("type", cfg.Type))
	}
	return &LocalStorageProvider{Config: cfg}
}

// ReportArchive keeps JSON snapshots of ReportMetrics for the downstream
// report generator.
type ReportArchive struct {
	Provider StorageProvider
}

func NewReportArchive(provider StorageProvider) *ReportArchive {
	return &ReportArchive{Provider: provider}
}

// ArchiveKey is <project>/<questionnaire or "all">/<generatedAt>.json.
func ArchiveKey(m *model.ReportMetrics) string {
	qk := m.QuestionnaireKey
	if qk == "" {
		qk = "all"
	}
	return fmt.Sprintf("%s/%s/%s.json", m.ProjectID, qk, m.GeneratedAt.UTC().Format(util.ArchiveTimeFormat))
}

// Archive stores the snapshot and returns where it can be fetched.
func (a *ReportArchive) Archive(ctx context.Context, m *model.ReportMetrics) (string, error) {
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report metrics: %w", err)
	}

	key := ArchiveKey(m)
	url, err := a.Provider.Put(ctx, key, bytes.NewReader(body), int64(len(body)), util.MimeJSON)
	if err != nil {
		return "", fmt.Errorf("store report metrics: %w", err)
	}

	monitoring.ReportsArchived.Inc()
	logger.Log.Info("Report metrics archived", zap.String("projectId", m.ProjectID), zap.String("key", key))
	return url, nil
}
