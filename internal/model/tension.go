package model

import (
	"gorm.io/datatypes"
)

type VoteType string

const (
	VoteAgree    VoteType = "agree"
	VoteDisagree VoteType = "disagree"
)

type ReviewState string

const (
	StateProposed     ReviewState = "Proposed"
	StateSingleReview ReviewState = "Single review"
	StateUnderReview  ReviewState = "Under review"
	StateAccepted     ReviewState = "Accepted"
	StateDisputed     ReviewState = "Disputed"
)

// ReviewStates lists the computed states in display order.
var ReviewStates = []ReviewState{
	StateProposed,
	StateSingleReview,
	StateUnderReview,
	StateAccepted,
	StateDisputed,
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// TensionStatus is set manually outside the consensus engine.
type TensionStatus string

const (
	TensionOpen     TensionStatus = "open"
	TensionResolved TensionStatus = "resolved"
)

type TensionEvidence struct {
	Type        string `json:"type"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Tension is a claimed conflict between two principles. Its review state is
// never stored; see service.ComputeReviewState.
type Tension struct {
	UUIDBase
	ProjectID      string                               `gorm:"type:varchar(36);not null;index" json:"projectId" validate:"required"`
	Principle1     Principle                            `gorm:"size:64;not null" json:"principle1" validate:"required,principle"`
	Principle2     Principle                            `gorm:"size:64;not null" json:"principle2" validate:"required,principle"`
	ClaimStatement string                               `gorm:"type:text;not null" json:"claimStatement" validate:"required"`
	Severity       Severity                             `gorm:"size:20;default:'medium'" json:"severity" validate:"required,oneof=low medium high critical"`
	Evidence       datatypes.JSONSlice[TensionEvidence] `gorm:"type:json" json:"evidence"`
	CreatedBy      string                               `gorm:"type:varchar(36);not null;index" json:"createdBy" validate:"required"`
	Status         TensionStatus                        `gorm:"size:20;default:'open'" json:"status"`
	Votes          []TensionVote                        `gorm:"foreignKey:TensionID;constraint:OnDelete:CASCADE" json:"votes"`
}

func (Tension) TableName() string {
	return "tensions"
}

type TensionVote struct {
	UUIDBase
	TensionID string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_tension_voter" json:"tensionId"`
	UserID    string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_tension_voter" json:"userId"`
	VoteType  VoteType `gorm:"size:16;not null" json:"voteType"`
}

func (TensionVote) TableName() string {
	return "tension_votes"
}
