package service

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/repository"
	"ethics_eval_backend/internal/util"
	"ethics_eval_backend/pkg/logger"
	"ethics_eval_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalyticsService assembles dashboard and report numbers. It only reads;
// a failing store empties its section instead of failing the request.
type AnalyticsService struct {
	Scores      ScoreStore
	Responses   ResponseStore
	Questions   QuestionStore
	Tensions    TensionStore
	Assignments AssignmentStore
	Settings    *ScoringSettings
	Now         func() time.Time
}

func NewAnalyticsService(scores ScoreStore, responses ResponseStore, questions QuestionStore, tensions TensionStore, assignments AssignmentStore, settings *ScoringSettings) *AnalyticsService {
	return &AnalyticsService{
		Scores:      scores,
		Responses:   responses,
		Questions:   questions,
		Tensions:    tensions,
		Assignments: assignments,
		Settings:    settings,
		Now:         time.Now,
	}
}

type projectData struct {
	scores      []model.Score
	responses   []model.Response
	tensions    []model.Tension
	assignments []model.ProjectAssignment
	questions   map[string]model.Question
}

func (d *projectData) submitted() []model.Response {
	out := make([]model.Response, 0, len(d.responses))
	for _, r := range d.responses {
		if r.IsSubmitted() {
			out = append(out, r)
		}
	}
	return out
}

func degrade(section, projectID string, err error) {
	logger.Log.Error("Analytics section degraded",
		zap.String("section", section),
		zap.String("projectId", projectID),
		zap.Error(err))
}

func (s *AnalyticsService) load(ctx context.Context, projectID, questionnaireKey string) *projectData {
	d := &projectData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scores, err := s.Scores.Find(gctx, projectID, "", questionnaireKey)
		if err != nil {
			degrade("scores", projectID, err)
			return nil
		}
		d.scores = scores
		return nil
	})
	g.Go(func() error {
		responses, err := s.Responses.Find(gctx, repository.ResponseFilter{
			ProjectID:        projectID,
			QuestionnaireKey: questionnaireKey,
		})
		if err != nil {
			degrade("responses", projectID, err)
			return nil
		}
		d.responses = responses
		return nil
	})
	g.Go(func() error {
		tensions, err := s.Tensions.FindByProject(gctx, projectID)
		if err != nil {
			degrade("tensions", projectID, err)
			return nil
		}
		d.tensions = tensions
		return nil
	})
	g.Go(func() error {
		assignments, err := s.Assignments.ListAssigned(gctx, projectID, questionnaireKey)
		if err != nil {
			degrade("assignments", projectID, err)
			return nil
		}
		d.assignments = assignments
		return nil
	})
	g.Wait()

	// the raw-answer risk fallback needs question principles
	if !hasQuestionScores(d.scores) && len(d.responses) > 0 {
		qs, err := questionsFor(ctx, s.Questions, d.responses)
		if err != nil {
			degrade("questions", projectID, err)
		}
		d.questions = qs
	}
	return d
}

func (s *AnalyticsService) topRisks(d *projectData) []model.RiskEntry {
	cfg := s.Settings.Get()
	submitted := d.submitted()
	risks := RankRisks(d.scores, submitted, d.questions, cfg.RiskTopN)
	AttachEvidence(risks, submitted, EvidenceOptions{
		PerQuestion: cfg.EvidencePerRisk,
		MinChars:    cfg.EvidenceMinChars,
		MaxChars:    cfg.EvidenceMaxChars,
	})
	return risks
}

// GetProjectAnalytics builds the dashboard payload of a project. An empty
// questionnaireKey aggregates every questionnaire.
func (s *AnalyticsService) GetProjectAnalytics(ctx context.Context, projectID, questionnaireKey string) (*model.AnalyticsPayload, error) {
	if projectID == "" {
		return nil, util.NewValidationError("analytics", "projectId is required")
	}
	ctx, span := tracing.Tracer.Start(ctx, "AnalyticsService.GetProjectAnalytics", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("questionnaire.key", questionnaireKey),
	))
	defer span.End()

	d := s.load(ctx, projectID, questionnaireKey)

	return &model.AnalyticsPayload{
		ProjectID:        projectID,
		QuestionnaireKey: questionnaireKey,
		Evaluators:       Evaluators(d.scores),
		Coverage:         BuildCoverage(d.assignments, d.responses, d.scores),
		PrincipleBar:     BuildPrincipleBar(d.scores),
		Matrix:           BuildMatrix(d.scores),
		TopRisks:         s.topRisks(d),
		Tensions:         SummarizeTensions(d.tensions),
	}, nil
}

// BuildReportMetrics builds the numeric snapshot a report is written from.
func (s *AnalyticsService) BuildReportMetrics(ctx context.Context, projectID, questionnaireKey string) (*model.ReportMetrics, error) {
	if projectID == "" {
		return nil, util.NewValidationError("report", "projectId is required")
	}
	ctx, span := tracing.Tracer.Start(ctx, "AnalyticsService.BuildReportMetrics", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("questionnaire.key", questionnaireKey),
	))
	defer span.End()

	d := s.load(ctx, projectID, questionnaireKey)

	return &model.ReportMetrics{
		ProjectID:         projectID,
		QuestionnaireKey:  questionnaireKey,
		GeneratedAt:       s.Now().UTC(),
		Evaluators:        Evaluators(d.scores),
		Coverage:          BuildCoverage(d.assignments, d.responses, d.scores),
		Overall:           OverallTotals(d.scores),
		Principles:        BuildPrincipleBar(d.scores),
		Matrix:            BuildMatrix(d.scores),
		TopRiskyQuestions: s.topRisks(d),
		TensionsSummary:   SummarizeTensions(d.tensions),
		Tensions:          BuildTensionRows(d.tensions),
	}, nil
}
