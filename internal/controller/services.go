package controller

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/service"
)

// Handlers depend on these views of the services.

type ScoreComputer interface {
	ComputeScores(ctx context.Context, projectID, userID, questionnaireKey string) ([]model.Score, error)
	RecomputeProject(ctx context.Context, projectID string) (*service.RecomputeResult, error)
}

type ResponseWorkflow interface {
	SaveDraft(ctx context.Context, projectID, userID string, role model.UserRole, req service.SaveDraftRequest) (*model.Response, error)
	Submit(ctx context.Context, responseID, userID string) (*service.SubmitResult, error)
}

type AnalyticsReader interface {
	GetProjectAnalytics(ctx context.Context, projectID, questionnaireKey string) (*model.AnalyticsPayload, error)
	BuildReportMetrics(ctx context.Context, projectID, questionnaireKey string) (*model.ReportMetrics, error)
}

type RiskRanker interface {
	RankRiskyQuestions(ctx context.Context, projectID, questionnaireKey string) ([]model.RiskEntry, error)
}

type ReportArchiver interface {
	Archive(ctx context.Context, m *model.ReportMetrics) (string, error)
}

type TensionWorkflow interface {
	CreateTension(ctx context.Context, projectID, userID string, role model.UserRole, req service.CreateTensionRequest) (*model.TensionRow, error)
	CastVote(ctx context.Context, tensionID, userID string, role model.UserRole, voteType model.VoteType) (*model.TensionRow, error)
	ListTensions(ctx context.Context, projectID string) ([]model.TensionRow, error)
}

var (
	_ ScoreComputer    = (*service.ScoreService)(nil)
	_ ResponseWorkflow = (*service.ResponseService)(nil)
	_ AnalyticsReader  = (*service.AnalyticsService)(nil)
	_ RiskRanker       = (*service.RiskService)(nil)
	_ ReportArchiver   = (*service.ReportArchive)(nil)
	_ TensionWorkflow  = (*service.TensionService)(nil)
)
