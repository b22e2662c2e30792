package model

import (
	"gorm.io/datatypes"
)

type AnswerType string

const (
	SingleChoice AnswerType = "single_choice"
	MultiChoice  AnswerType = "multi_choice"
	OpenText     AnswerType = "open_text"
	Numeric      AnswerType = "numeric"
)

type QuestionOption struct {
	Key   string  `json:"key" validate:"required"`
	Label string  `json:"label"`
	Score float64 `json:"score" validate:"min=0,max=4"`
}

// Question defines the scoring semantics of one questionnaire item. It is
// owned by the questionnaire authoring side and treated as immutable once
// answers reference it.
type Question struct {
	UUIDBase
	QuestionnaireKey string                            `gorm:"size:100;not null;uniqueIndex:idx_questionnaire_code" json:"questionnaireKey" validate:"required"`
	Code             string                            `gorm:"size:100;not null;uniqueIndex:idx_questionnaire_code" json:"code" validate:"required"`
	Principle        Principle                         `gorm:"size:64;not null;index" json:"principle" validate:"required,principle"`
	AnswerType       AnswerType                        `gorm:"size:32;not null" json:"answerType" validate:"required,oneof=single_choice multi_choice open_text numeric"`
	Options          datatypes.JSONSlice[QuestionOption] `gorm:"type:json" json:"options,omitempty" validate:"required_if=AnswerType single_choice,required_if=AnswerType multi_choice,dive"`
	Text             string                            `gorm:"type:text" json:"text"`
	Required         bool                              `gorm:"default:false" json:"required"`
	Order            int                               `gorm:"default:0" json:"order"`
	Weight           float64                           `gorm:"default:1" json:"weight" validate:"gte=0"`
}

func (Question) TableName() string {
	return "questions"
}

// Option returns the option with the given key.
func (q *Question) Option(key string) (QuestionOption, bool) {
	for _, o := range q.Options {
		if o.Key == key {
			return o, true
		}
	}
	return QuestionOption{}, false
}

// EffectiveWeight treats an unset weight as 1.
func (q *Question) EffectiveWeight() float64 {
	if q.Weight <= 0 {
		return 1
	}
	return q.Weight
}
