package model

import (
	"time"

	"gorm.io/datatypes"
)

type ScoreTotals struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	N   int     `json:"n"`
}

type PrincipleStat struct {
	Avg float64 `json:"avg"`
	N   int     `json:"n"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type QuestionScore struct {
	QuestionID   string    `json:"questionId"`
	QuestionCode string    `json:"questionCode"`
	PrincipleKey Principle `json:"principleKey"`
	Score        float64   `json:"score"`
	Weight       float64   `json:"weight"`
	IsNA         bool      `json:"isNA"`
}

// Score is the materialized rollup for one (project, user, questionnaire)
// triple. It is only ever written by the score service through an upsert.
type Score struct {
	UUIDBase
	ProjectID        string                                     `gorm:"type:varchar(36);not null;uniqueIndex:idx_score_triple" json:"projectId"`
	UserID           string                                     `gorm:"type:varchar(36);not null;uniqueIndex:idx_score_triple" json:"userId"`
	QuestionnaireKey string                                     `gorm:"size:100;not null;uniqueIndex:idx_score_triple" json:"questionnaireKey"`
	Role             UserRole                                   `gorm:"size:32;not null" json:"role"`
	ComputedAt       time.Time                                  `json:"computedAt"`
	Totals           ScoreTotals                                `gorm:"embedded;embeddedPrefix:totals_" json:"totals"`
	ByPrinciple      datatypes.JSONType[map[Principle]PrincipleStat] `gorm:"type:json" json:"byPrinciple"`
	ByQuestion       datatypes.JSONSlice[QuestionScore]         `gorm:"type:json" json:"byQuestion"`
}

func (Score) TableName() string {
	return "scores"
}

// Principles returns the per-principle stats, never nil.
func (s *Score) Principles() map[Principle]PrincipleStat {
	m := s.ByPrinciple.Data()
	if m == nil {
		return map[Principle]PrincipleStat{}
	}
	return m
}
