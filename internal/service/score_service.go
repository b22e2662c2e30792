package service

import (
	"context"
	"errors"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/repository"
	"ethics_eval_backend/internal/util"
	"ethics_eval_backend/pkg/logger"
	"ethics_eval_backend/pkg/monitoring"
	"ethics_eval_backend/pkg/tracing"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// scoreNamespace seeds the deterministic Score ids.
var scoreNamespace = uuid.MustParse("6f1c2d7e-3b5a-4c1e-9a8f-2d4b6e8c0a13")

// ScoreID is stable per (project, user, questionnaire) so a recomputation
// rewrites the same document.
func ScoreID(projectID, userID, questionnaireKey string) string {
	return uuid.NewSHA1(scoreNamespace, []byte(projectID+"\x00"+userID+"\x00"+questionnaireKey)).String()
}

type ScoreService struct {
	Responses ResponseStore
	Questions QuestionStore
	Scores    ScoreStore
	Locker    Locker
	Settings  *ScoringSettings
	Now       func() time.Time
}

// NewScoreService wires the aggregator. locker may be nil when redis is not
// configured; the recompute lock is then skipped even if enabled.
func NewScoreService(responses ResponseStore, questions QuestionStore, scores ScoreStore, locker Locker, settings *ScoringSettings) *ScoreService {
	return &ScoreService{
		Responses: responses,
		Questions: questions,
		Scores:    scores,
		Locker:    locker,
		Settings:  settings,
		Now:       time.Now,
	}
}

// ScoreGroup is the set of submitted responses that roll up into one Score.
type ScoreGroup struct {
	UserID           string
	QuestionnaireKey string
	Role             model.UserRole
	Responses        []model.Response
}

// ComputeScores recomputes and upserts the Scores of every group matched by
// the filter. userID and questionnaireKey may be empty to widen it. No
// submitted responses is not an error: it returns nil, nil.
func (s *ScoreService) ComputeScores(ctx context.Context, projectID, userID, questionnaireKey string) ([]model.Score, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ScoreService.ComputeScores", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("user.id", userID),
		attribute.String("questionnaire.key", questionnaireKey),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		monitoring.ScoreComputeDuration.Observe(time.Since(start).Seconds())
	}()

	if projectID == "" {
		return nil, util.NewValidationError("score", "projectId is required")
	}

	cfg := s.Settings.Get()
	if cfg.RecomputeLock && s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, projectID, userID, questionnaireKey, cfg.RecomputeLockTTL)
		if err != nil {
			if errors.Is(err, util.ErrLockHeld) {
				monitoring.ScoreComputations.WithLabelValues("locked").Inc()
			}
			return nil, err
		}
		defer release()
	}

	responses, err := s.Responses.Find(ctx, repository.ResponseFilter{
		ProjectID:        projectID,
		UserID:           userID,
		QuestionnaireKey: questionnaireKey,
		Status:           model.ResponseSubmitted,
	})
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("load responses: %w", err))
	}
	if len(responses) == 0 {
		logger.Log.Info("No submitted responses to score",
			zap.String("projectId", projectID),
			zap.String("userId", userID),
			zap.String("questionnaireKey", questionnaireKey))
		monitoring.ScoreComputations.WithLabelValues("empty").Inc()
		return nil, nil
	}

	questions, err := questionsFor(ctx, s.Questions, responses)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("load questions: %w", err))
	}

	groups := GroupResponses(responses, cfg.DedupResubmissions)
	computedAt := s.Now().UTC()
	scores := make([]model.Score, 0, len(groups))

	for _, g := range groups {
		score := BuildScore(projectID, g, questions, computedAt)
		if err := s.Scores.Upsert(ctx, &score); err != nil {
			return nil, s.fail(span, fmt.Errorf("upsert score for user %s: %w", g.UserID, err))
		}
		scores = append(scores, score)
		monitoring.ScoreComputations.WithLabelValues("ok").Inc()

		logger.Log.Debug("Score recomputed",
			zap.String("projectId", projectID),
			zap.String("userId", g.UserID),
			zap.String("questionnaireKey", g.QuestionnaireKey),
			zap.Int("responses", len(g.Responses)),
			zap.Int("n", score.Totals.N))
	}

	span.SetAttributes(attribute.Int("scores.count", len(scores)))
	return scores, nil
}

func (s *ScoreService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	monitoring.ScoreComputations.WithLabelValues("error").Inc()
	return err
}

// GroupResponses buckets submitted responses by (user, questionnaire),
// ordered by first submission. A group takes the role of its latest
// response. With dedup only that latest response is kept, otherwise the
// answers of all of them are pooled.
func GroupResponses(responses []model.Response, dedup bool) []ScoreGroup {
	type key struct{ user, questionnaire string }

	sorted := make([]model.Response, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return submittedAt(sorted[i]).Before(submittedAt(sorted[j]))
	})

	index := make(map[key]int)
	var groups []ScoreGroup
	for _, r := range sorted {
		k := key{r.UserID, r.QuestionnaireKey}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, ScoreGroup{UserID: r.UserID, QuestionnaireKey: r.QuestionnaireKey})
		}
		g := &groups[i]
		g.Role = r.Role
		if dedup {
			g.Responses = []model.Response{r}
		} else {
			g.Responses = append(g.Responses, r)
		}
	}
	return groups
}

func submittedAt(r model.Response) time.Time {
	if r.SubmittedAt != nil {
		return *r.SubmittedAt
	}
	return r.CreatedAt
}

type runningStat struct {
	sum      float64
	n        int
	min, max float64
}

func (st *runningStat) add(v float64) {
	if st.n == 0 {
		st.min, st.max = v, v
	} else {
		st.min = math.Min(st.min, v)
		st.max = math.Max(st.max, v)
	}
	st.sum += v
	st.n++
}

func (st *runningStat) avg() float64 {
	return util.Round2(util.SafeDiv(st.sum, float64(st.n)))
}

// BuildScore rolls one group up into a Score. Answers whose question is
// unknown are skipped. Not-applicable and unscored answers are listed in
// ByQuestion with IsNA and left out of every statistic.
func BuildScore(projectID string, g ScoreGroup, questions map[string]model.Question, computedAt time.Time) model.Score {
	var total runningStat
	principles := make(map[model.Principle]*runningStat)
	byQuestion := make([]model.QuestionScore, 0)

	for _, r := range g.Responses {
		for _, a := range r.Answers {
			q, ok := questions[a.QuestionID]
			if !ok {
				logger.Log.Warn("Skipping answer to unknown question",
					zap.String("responseId", r.ID),
					zap.String("questionId", a.QuestionID),
					zap.String("questionCode", a.QuestionCode))
				continue
			}

			qs := model.QuestionScore{
				QuestionID:   q.ID,
				QuestionCode: q.Code,
				PrincipleKey: q.Principle,
				Weight:       q.EffectiveWeight(),
			}
			if a.NotApplicable || a.Score == nil {
				qs.IsNA = true
				byQuestion = append(byQuestion, qs)
				continue
			}

			qs.Score = *a.Score
			byQuestion = append(byQuestion, qs)

			total.add(qs.Score)
			st, ok := principles[q.Principle]
			if !ok {
				st = &runningStat{}
				principles[q.Principle] = st
			}
			st.add(qs.Score)
		}
	}

	byPrinciple := make(map[model.Principle]model.PrincipleStat, len(principles))
	for p, st := range principles {
		byPrinciple[p] = model.PrincipleStat{
			Avg: st.avg(),
			N:   st.n,
			Min: util.Round2(st.min),
			Max: util.Round2(st.max),
		}
	}

	score := model.Score{
		ProjectID:        projectID,
		UserID:           g.UserID,
		QuestionnaireKey: g.QuestionnaireKey,
		Role:             g.Role,
		ComputedAt:       computedAt,
		Totals: model.ScoreTotals{
			Avg: total.avg(),
			Min: util.Round2(total.min),
			Max: util.Round2(total.max),
			N:   total.n,
		},
		ByPrinciple: datatypes.NewJSONType(byPrinciple),
		ByQuestion:  byQuestion,
	}
	score.ID = ScoreID(projectID, g.UserID, g.QuestionnaireKey)
	return score
}

// RecomputeResult summarizes a project-wide recomputation.
type RecomputeResult struct {
	Triples  int             `json:"triples"`
	Computed int             `json:"computed"`
	Failed   []TripleFailure `json:"failed,omitempty"`
}

type TripleFailure struct {
	UserID           string `json:"userId"`
	QuestionnaireKey string `json:"questionnaireKey"`
	Error            string `json:"error"`
}

// RecomputeProject recomputes every (user, questionnaire) triple with a
// submitted response. A failing triple is logged and reported but does not
// stop the others.
func (s *ScoreService) RecomputeProject(ctx context.Context, projectID string) (*RecomputeResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ScoreService.RecomputeProject",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if projectID == "" {
		return nil, util.NewValidationError("score", "projectId is required")
	}

	responses, err := s.Responses.Find(ctx, repository.ResponseFilter{
		ProjectID: projectID,
		Status:    model.ResponseSubmitted,
	})
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	groups := GroupResponses(responses, false)
	result := &RecomputeResult{Triples: len(groups)}

	var mu sync.Mutex
	limit := s.Settings.Get().BatchConcurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for _, grp := range groups {
		g.Go(func() error {
			_, err := s.ComputeScores(ctx, projectID, grp.UserID, grp.QuestionnaireKey)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Log.Error("Score recomputation failed",
					zap.String("projectId", projectID),
					zap.String("userId", grp.UserID),
					zap.String("questionnaireKey", grp.QuestionnaireKey),
					zap.Error(err))
				result.Failed = append(result.Failed, TripleFailure{
					UserID:           grp.UserID,
					QuestionnaireKey: grp.QuestionnaireKey,
					Error:            err.Error(),
				})
				return nil
			}
			result.Computed++
			return nil
		})
	}
	g.Wait()

	sort.Slice(result.Failed, func(i, j int) bool {
		if result.Failed[i].UserID != result.Failed[j].UserID {
			return result.Failed[i].UserID < result.Failed[j].UserID
		}
		return result.Failed[i].QuestionnaireKey < result.Failed[j].QuestionnaireKey
	})

	logger.Log.Info("Project scores recomputed",
		zap.String("projectId", projectID),
		zap.Int("triples", result.Triples),
		zap.Int("computed", result.Computed),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}
