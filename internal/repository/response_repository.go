package repository

import (
	"context"
	"errors"
	"ethics_eval_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// ResponseFilter selects responses; empty fields are not filtered on.
type ResponseFilter struct {
	ProjectID        string
	UserID           string
	QuestionnaireKey string
	Status           model.ResponseStatus
}

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

func preloadAnswers(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (r *ResponseRepository) Find(ctx context.Context, f ResponseFilter) ([]model.Response, error) {
	query := r.DB.WithContext(ctx).Model(&model.Response{}).Where("project_id = ?", f.ProjectID)
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.QuestionnaireKey != "" {
		query = query.Where("questionnaire_key = ?", f.QuestionnaireKey)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var rs []model.Response
	err := query.Preload("Answers", preloadAnswers).
		Order("submitted_at asc, created_at asc").
		Find(&rs).Error
	return rs, err
}

// FindByID returns nil, nil when the response does not exist.
func (r *ResponseRepository) FindByID(ctx context.Context, id string) (*model.Response, error) {
	var resp model.Response
	err := r.DB.WithContext(ctx).Preload("Answers", preloadAnswers).First(&resp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// FindLatest returns the user's most recent response for a questionnaire
// with its answers, or nil when there is none.
func (r *ResponseRepository) FindLatest(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Response, error) {
	var resp model.Response
	err := r.DB.WithContext(ctx).
		Preload("Answers", preloadAnswers).
		Where("project_id = ? AND user_id = ? AND questionnaire_key = ?", projectID, userID, questionnaireKey).
		Order("created_at desc").
		First(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveWithAnswers stores the response and replaces its answers in one
// transaction, so a failed save leaves the previous answers intact.
func (r *ResponseRepository) SaveWithAnswers(ctx context.Context, resp *model.Response, answers []model.Answer) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Answers").Save(resp).Error; err != nil {
			return err
		}
		if err := tx.Where("response_id = ?", resp.ID).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].ResponseID = resp.ID
			answers[i].Position = i
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		resp.Answers = answers
		return nil
	})
}

func (r *ResponseRepository) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.Response{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.ResponseSubmitted,
			"submitted_at": at,
		}).Error
}
