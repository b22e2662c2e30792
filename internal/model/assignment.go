package model

// ProjectAssignment records that a user is expected to fill a questionnaire
// for a project. Only used for participation coverage, never for scores.
type ProjectAssignment struct {
	UUIDBase
	ProjectID        string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignment" json:"projectId"`
	UserID           string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignment" json:"userId"`
	QuestionnaireKey string   `gorm:"size:100;not null;uniqueIndex:idx_assignment" json:"questionnaireKey"`
	Role             UserRole `gorm:"size:32;not null" json:"role"`
}

func (ProjectAssignment) TableName() string {
	return "project_assignments"
}
