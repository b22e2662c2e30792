package repository

import (
	"context"
	"errors"
	"ethics_eval_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TensionRepository struct {
	DB *gorm.DB
}

func NewTensionRepository(db *gorm.DB) *TensionRepository {
	return &TensionRepository{DB: db}
}

func (r *TensionRepository) Create(ctx context.Context, t *model.Tension) error {
	return r.DB.WithContext(ctx).Omit("Votes").Create(t).Error
}

// FindByID returns nil, nil when the tension does not exist.
func (r *TensionRepository) FindByID(ctx context.Context, id string) (*model.Tension, error) {
	var t model.Tension
	err := r.DB.WithContext(ctx).Preload("Votes").First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TensionRepository) FindByProject(ctx context.Context, projectID string) ([]model.Tension, error) {
	var ts []model.Tension
	err := r.DB.WithContext(ctx).
		Preload("Votes").
		Where("project_id = ?", projectID).
		Order("created_at asc").
		Find(&ts).Error
	return ts, err
}

// UpsertVote records a user's vote, replacing an earlier one on the same
// tension.
func (r *TensionRepository) UpsertVote(ctx context.Context, v *model.TensionVote) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tension_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote_type", "updated_at"}),
	}).Create(v).Error
}
