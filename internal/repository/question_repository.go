package repository

import (
	"context"
	"ethics_eval_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(q).Error
}

// ListByQuestionnaire returns the questionnaire's questions in display order.
func (r *QuestionRepository) ListByQuestionnaire(ctx context.Context, questionnaireKey string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.WithContext(ctx).
		Where("questionnaire_key = ?", questionnaireKey).
		Order("`order` asc, code asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var qs []model.Question
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}
