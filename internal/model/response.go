package model

import (
	"time"

	"gorm.io/datatypes"
)

type ResponseStatus string

const (
	ResponseDraft     ResponseStatus = "draft"
	ResponseSubmitted ResponseStatus = "submitted"
)

// Response is one evaluator's attempt at one questionnaire version for one
// project.
type Response struct {
	UUIDBase
	ProjectID            string         `gorm:"type:varchar(36);not null;index:idx_response_lookup" json:"projectId"`
	UserID               string         `gorm:"type:varchar(36);not null;index:idx_response_lookup" json:"userId"`
	Role                 UserRole       `gorm:"size:32;not null" json:"role"`
	QuestionnaireKey     string         `gorm:"size:100;not null;index:idx_response_lookup" json:"questionnaireKey"`
	QuestionnaireVersion int            `gorm:"default:1" json:"questionnaireVersion"`
	Status               ResponseStatus `gorm:"size:20;default:'draft';index" json:"status"`
	SubmittedAt          *time.Time     `json:"submittedAt,omitempty"`
	Answers              []Answer       `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers"`
}

func (Response) TableName() string {
	return "responses"
}

func (r *Response) IsSubmitted() bool {
	return r.Status == ResponseSubmitted
}

// Answer is one reply inside a Response. The raw payload columns are only
// meaningful together with the referenced Question's answer type; use
// Payload to read them.
type Answer struct {
	UUIDBase
	ResponseID      string                    `gorm:"type:varchar(36);not null;index" json:"responseId"`
	QuestionID      string                    `gorm:"type:varchar(36);not null;index" json:"questionId"`
	QuestionCode    string                    `gorm:"size:100" json:"questionCode"`
	Position        int                       `gorm:"default:0" json:"position"`
	ChoiceKey       string                    `gorm:"size:100" json:"choiceKey,omitempty"`
	MultiChoiceKeys datatypes.JSONSlice[string] `gorm:"type:json" json:"multiChoiceKeys,omitempty"`
	AnswerText      string                    `gorm:"type:text" json:"answerText,omitempty"`
	Numeric         *float64                  `json:"numeric,omitempty"`
	Score           *float64                  `json:"score,omitempty"`
	ScoreSuggested  *float64                  `json:"scoreSuggested,omitempty"`
	ScoreFinal      *float64                  `json:"scoreFinal,omitempty"`
	Evidence        string                    `gorm:"type:text" json:"evidence,omitempty"`
	NotApplicable   bool                      `gorm:"default:false" json:"notApplicable"`
}

func (Answer) TableName() string {
	return "response_answers"
}

// Payload decodes the stored raw columns into the variant selected by the
// question's answer type.
func (a *Answer) Payload(t AnswerType) AnswerPayload {
	return AnswerInput{
		ChoiceKey:       a.ChoiceKey,
		MultiChoiceKeys: a.MultiChoiceKeys,
		AnswerText:      a.AnswerText,
		Numeric:         a.Numeric,
		Score:           a.Score,
		ScoreSuggested:  a.ScoreSuggested,
		ScoreFinal:      a.ScoreFinal,
	}.Payload(t)
}

// AnswerInput is the untyped wire shape of a submitted answer.
type AnswerInput struct {
	QuestionCode    string   `json:"questionCode" binding:"required"`
	ChoiceKey       string   `json:"choiceKey,omitempty"`
	MultiChoiceKeys []string `json:"multiChoiceKeys,omitempty"`
	AnswerText      string   `json:"answerText,omitempty"`
	Numeric         *float64 `json:"numeric,omitempty"`
	Score           *float64 `json:"score,omitempty"`
	ScoreSuggested  *float64 `json:"scoreSuggested,omitempty"`
	ScoreFinal      *float64 `json:"scoreFinal,omitempty"`
	Evidence        string   `json:"evidence,omitempty"`
	NotApplicable   bool     `json:"notApplicable,omitempty"`
}

// Payload selects the variant for the given answer type. Unknown types yield
// nil.
func (in AnswerInput) Payload(t AnswerType) AnswerPayload {
	switch t {
	case SingleChoice:
		return SingleChoicePayload{ChoiceKey: in.ChoiceKey}
	case MultiChoice:
		return MultiChoicePayload{Keys: in.MultiChoiceKeys}
	case OpenText:
		return OpenTextPayload{
			Text:           in.AnswerText,
			Score:          in.Score,
			ScoreSuggested: in.ScoreSuggested,
			ScoreFinal:     in.ScoreFinal,
		}
	case Numeric:
		return NumericPayload{Value: in.Numeric}
	default:
		return nil
	}
}

// AnswerPayload is the tagged union of raw answer shapes.
type AnswerPayload interface {
	AnswerType() AnswerType
}

type SingleChoicePayload struct {
	ChoiceKey string
}

func (SingleChoicePayload) AnswerType() AnswerType { return SingleChoice }

type MultiChoicePayload struct {
	Keys []string
}

func (MultiChoicePayload) AnswerType() AnswerType { return MultiChoice }

// OpenTextPayload carries free text plus the human score overrides; the text
// itself is never scored.
type OpenTextPayload struct {
	Text           string
	Score          *float64
	ScoreSuggested *float64
	ScoreFinal     *float64
}

func (OpenTextPayload) AnswerType() AnswerType { return OpenText }

type NumericPayload struct {
	Value *float64
}

func (NumericPayload) AnswerType() AnswerType { return Numeric }
