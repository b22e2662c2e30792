// Recomputes stored Scores for a list of projects, e.g. after the range
// policy changes or after a bulk import of responses.
//
// Usage: go run scripts/recompute_scores.go -jobs scripts/recompute.yaml
//
// Job file:
//
//	projects:
//	  - p-001
//	  - p-002
//	dedup_resubmissions: false

package main

import (
	"context"
	"ethics_eval_backend/internal/config"
	"ethics_eval_backend/internal/repository"
	"ethics_eval_backend/internal/service"
	"ethics_eval_backend/pkg/database"
	"ethics_eval_backend/pkg/logger"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type recomputeJob struct {
	Projects []string `yaml:"projects"`
	// overrides scoring.dedup_resubmissions when set
	DedupResubmissions *bool `yaml:"dedup_resubmissions"`
}

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	jobPath := flag.String("jobs", "scripts/recompute.yaml", "job file listing projects")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	data, err := os.ReadFile(*jobPath)
	if err != nil {
		log.Fatalf("Failed to read job file: %v", err)
	}
	var job recomputeJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		log.Fatalf("Failed to parse job file: %v", err)
	}
	if len(job.Projects) == 0 {
		log.Fatal("Job file lists no projects")
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}

	scoring := cfg.Scoring
	if job.DedupResubmissions != nil {
		scoring.DedupResubmissions = *job.DedupResubmissions
	}
	// a one-off batch does not coordinate with running servers
	scoring.RecomputeLock = false

	scores := service.NewScoreService(
		repository.NewResponseRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewScoreRepository(db),
		nil,
		service.NewScoringSettings(scoring),
	)

	failedProjects := 0
	for _, projectID := range job.Projects {
		result, err := scores.RecomputeProject(context.Background(), projectID)
		if err != nil {
			failedProjects++
			logger.Log.Error("Recompute failed", zap.String("projectId", projectID), zap.Error(err))
			continue
		}
		logger.Log.Info("Project recomputed",
			zap.String("projectId", projectID),
			zap.Int("triples", result.Triples),
			zap.Int("computed", result.Computed),
			zap.Int("failed", len(result.Failed)))
		for _, f := range result.Failed {
			logger.Log.Warn("Triple failed",
				zap.String("projectId", projectID),
				zap.String("userId", f.UserID),
				zap.String("questionnaireKey", f.QuestionnaireKey),
				zap.String("error", f.Error))
		}
	}

	if failedProjects > 0 {
		os.Exit(1)
	}
}
