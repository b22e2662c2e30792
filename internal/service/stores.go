package service

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/repository"
	"time"
)

// The services depend on these narrow views of the repositories so tests can
// swap in memory fakes.

type QuestionStore interface {
	ListByQuestionnaire(ctx context.Context, questionnaireKey string) ([]model.Question, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Question, error)
}

type ResponseStore interface {
	Find(ctx context.Context, f repository.ResponseFilter) ([]model.Response, error)
	FindByID(ctx context.Context, id string) (*model.Response, error)
	FindLatest(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Response, error)
	SaveWithAnswers(ctx context.Context, r *model.Response, answers []model.Answer) error
	MarkSubmitted(ctx context.Context, id string, at time.Time) error
}

type ScoreStore interface {
	Upsert(ctx context.Context, s *model.Score) error
	Find(ctx context.Context, projectID, userID, questionnaireKey string) ([]model.Score, error)
}

type TensionStore interface {
	Create(ctx context.Context, t *model.Tension) error
	FindByID(ctx context.Context, id string) (*model.Tension, error)
	FindByProject(ctx context.Context, projectID string) ([]model.Tension, error)
	UpsertVote(ctx context.Context, v *model.TensionVote) error
}

type AssignmentStore interface {
	ListAssigned(ctx context.Context, projectID, questionnaireKey string) ([]model.ProjectAssignment, error)
}

// Locker serializes recomputation of one (project, user, questionnaire)
// triple.
type Locker interface {
	Acquire(ctx context.Context, projectID, userID, questionnaireKey string, ttl time.Duration) (func(), error)
}

var (
	_ QuestionStore   = (*repository.QuestionRepository)(nil)
	_ ResponseStore   = (*repository.ResponseRepository)(nil)
	_ ScoreStore      = (*repository.ScoreRepository)(nil)
	_ TensionStore    = (*repository.TensionRepository)(nil)
	_ AssignmentStore = (*repository.AssignmentRepository)(nil)
	_ Locker          = (*repository.RecomputeLock)(nil)
)
