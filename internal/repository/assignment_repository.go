package repository

import (
	"context"
	"ethics_eval_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) Assign(ctx context.Context, a *model.ProjectAssignment) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(a).Error
}

// ListAssigned returns the assignment set of a project. An empty
// questionnaireKey returns assignments of every questionnaire.
func (r *AssignmentRepository) ListAssigned(ctx context.Context, projectID, questionnaireKey string) ([]model.ProjectAssignment, error) {
	query := r.DB.WithContext(ctx).Where("project_id = ?", projectID)
	if questionnaireKey != "" {
		query = query.Where("questionnaire_key = ?", questionnaireKey)
	}
	var as []model.ProjectAssignment
	err := query.Order("role asc, user_id asc").Find(&as).Error
	return as, err
}
