package service

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
	"ethics_eval_backend/pkg/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ResponseService runs the evaluator side of a questionnaire: saving drafts
// and submitting them, which triggers score recomputation.
type ResponseService struct {
	Questions  QuestionStore
	Responses  ResponseStore
	Normalizer *AnswerNormalizer
	Scores     *ScoreService
	Now        func() time.Time
}

func NewResponseService(questions QuestionStore, responses ResponseStore, normalizer *AnswerNormalizer, scores *ScoreService) *ResponseService {
	return &ResponseService{
		Questions:  questions,
		Responses:  responses,
		Normalizer: normalizer,
		Scores:     scores,
		Now:        time.Now,
	}
}

type SaveDraftRequest struct {
	QuestionnaireKey     string              `json:"questionnaireKey" binding:"required"`
	QuestionnaireVersion int                 `json:"questionnaireVersion"`
	Answers              []model.AnswerInput `json:"answers" binding:"dive"`
}

// SaveDraft normalizes the answers and stores them on the user's open draft,
// starting a new one if the latest response was already submitted. Any
// invalid answer rejects the whole save and keeps the stored answers.
func (s *ResponseService) SaveDraft(ctx context.Context, projectID, userID string, role model.UserRole, req SaveDraftRequest) (*model.Response, error) {
	if !role.CanContribute() {
		return nil, fmt.Errorf("role %q cannot answer questionnaires: %w", role, util.ErrPermissionDenied)
	}

	questions, err := s.Questions.ListByQuestionnaire(ctx, req.QuestionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, util.NewNotFoundError("questionnaire", req.QuestionnaireKey)
	}

	answers, err := s.Normalizer.NormalizeBatch(questions, req.Answers)
	if err != nil {
		return nil, err
	}

	resp, err := s.Responses.FindLatest(ctx, projectID, userID, req.QuestionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("load response: %w", err)
	}
	if resp == nil || resp.IsSubmitted() {
		resp = &model.Response{
			ProjectID:        projectID,
			UserID:           userID,
			QuestionnaireKey: req.QuestionnaireKey,
			Status:           model.ResponseDraft,
		}
	}
	resp.Role = role
	resp.QuestionnaireVersion = req.QuestionnaireVersion
	if resp.QuestionnaireVersion <= 0 {
		resp.QuestionnaireVersion = 1
	}

	if err := s.Responses.SaveWithAnswers(ctx, resp, answers); err != nil {
		return nil, fmt.Errorf("save response: %w", err)
	}

	logger.Log.Info("Draft saved",
		zap.String("responseId", resp.ID),
		zap.String("projectId", projectID),
		zap.String("userId", userID),
		zap.Int("answers", len(answers)))
	return resp, nil
}

type SubmitResult struct {
	Response *model.Response `json:"response"`
	Scores   []model.Score   `json:"scores"`
}

// Submit marks the response submitted once every required question has an
// answer, then recomputes the user's Score for that questionnaire.
// Submitting an already submitted response only recomputes.
func (s *ResponseService) Submit(ctx context.Context, responseID, userID string) (*SubmitResult, error) {
	resp, err := s.Responses.FindByID(ctx, responseID)
	if err != nil {
		return nil, fmt.Errorf("load response: %w", err)
	}
	if resp == nil {
		return nil, util.NewNotFoundError("response", responseID)
	}
	if resp.UserID != userID {
		return nil, fmt.Errorf("response %s belongs to another user: %w", responseID, util.ErrPermissionDenied)
	}

	if !resp.IsSubmitted() {
		questions, err := s.Questions.ListByQuestionnaire(ctx, resp.QuestionnaireKey)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
		if missing := MissingRequired(questions, resp.Answers); len(missing) > 0 {
			verr := &util.ValidationError{Entity: "response"}
			for _, code := range missing {
				verr.AddError("required question %s is not answered", code)
			}
			return nil, verr
		}

		now := s.Now().UTC()
		if err := s.Responses.MarkSubmitted(ctx, resp.ID, now); err != nil {
			return nil, fmt.Errorf("submit response: %w", err)
		}
		resp.Status = model.ResponseSubmitted
		resp.SubmittedAt = &now
	}

	scores, err := s.Scores.ComputeScores(ctx, resp.ProjectID, resp.UserID, resp.QuestionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("compute scores: %w", err)
	}

	logger.Log.Info("Response submitted",
		zap.String("responseId", resp.ID),
		zap.String("projectId", resp.ProjectID),
		zap.String("userId", resp.UserID))
	return &SubmitResult{Response: resp, Scores: scores}, nil
}

// MissingRequired returns the codes of required questions without an answer,
// in questionnaire order. A not-applicable answer counts as answered.
func MissingRequired(questions []model.Question, answers []model.Answer) []string {
	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}
	var missing []string
	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			missing = append(missing, q.Code)
		}
	}
	return missing
}
