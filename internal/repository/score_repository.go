package repository

import (
	"context"
	"ethics_eval_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

// Upsert writes the rollup for its (project, user, questionnaire) triple in a
// single statement. The unique index makes concurrent writers for the same
// triple replace each other instead of interleaving.
func (r *ScoreRepository) Upsert(ctx context.Context, s *model.Score) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "user_id"}, {Name: "questionnaire_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"role",
			"computed_at",
			"totals_avg",
			"totals_min",
			"totals_max",
			"totals_n",
			"by_principle",
			"by_question",
			"updated_at",
			"deleted_at",
		}),
	}).Create(s).Error
}

// Find lists scores of a project, optionally narrowed by user and
// questionnaire.
func (r *ScoreRepository) Find(ctx context.Context, projectID, userID, questionnaireKey string) ([]model.Score, error) {
	query := r.DB.WithContext(ctx).Where("project_id = ?", projectID)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if questionnaireKey != "" {
		query = query.Where("questionnaire_key = ?", questionnaireKey)
	}
	var ss []model.Score
	err := query.Order("role asc, user_id asc, questionnaire_key asc").Find(&ss).Error
	return ss, err
}
