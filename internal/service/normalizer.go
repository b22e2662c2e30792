package service

import (
	"errors"
	"ethics_eval_backend/internal/config"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
	"ethics_eval_backend/pkg/monitoring"
	"math"
)

const (
	minScore = 0.0
	maxScore = 4.0
)

// AnswerNormalizer maps raw answers to a comparable 0-4 score.
type AnswerNormalizer struct {
	Settings *ScoringSettings
}

func NewAnswerNormalizer(settings *ScoringSettings) *AnswerNormalizer {
	return &AnswerNormalizer{Settings: settings}
}

// Normalize returns the score of one answer, rounded to two decimals.
//
// Choice answers must reference option keys of the question. A multi choice
// answer whose keys all miss the option list scores 0. Open text is scored
// from its override chain scoreFinal, scoreSuggested, score and falls back to
// 0; the text itself is never scored.
func (n *AnswerNormalizer) Normalize(q *model.Question, p model.AnswerPayload) (float64, error) {
	policy := n.Settings.Get().RangePolicy
	score, err := normalize(q, p, policy)
	if err != nil {
		monitoring.NormalizationFailures.WithLabelValues(string(q.AnswerType)).Inc()
		return 0, err
	}
	return util.Round2(score), nil
}

func normalize(q *model.Question, p model.AnswerPayload, policy string) (float64, error) {
	if p == nil || p.AnswerType() != q.AnswerType {
		return 0, util.NewValidationError("answer", "question %s expects a %s answer", q.Code, q.AnswerType)
	}

	switch v := p.(type) {
	case model.SingleChoicePayload:
		if v.ChoiceKey == "" {
			return 0, util.NewValidationError("answer", "question %s: choice key is required", q.Code)
		}
		opt, ok := q.Option(v.ChoiceKey)
		if !ok {
			return 0, util.NewValidationError("answer", "question %s: unknown choice key %q", q.Code, v.ChoiceKey)
		}
		return opt.Score, nil

	case model.MultiChoicePayload:
		if len(v.Keys) == 0 {
			return 0, util.NewValidationError("answer", "question %s: at least one choice key is required", q.Code)
		}
		var matched []float64
		for _, k := range v.Keys {
			if opt, ok := q.Option(k); ok {
				matched = append(matched, opt.Score)
			}
		}
		return util.Mean(matched), nil

	case model.OpenTextPayload:
		override := firstSet(v.ScoreFinal, v.ScoreSuggested, v.Score)
		if override == nil {
			return 0, nil
		}
		return applyRange(q.Code, *override, policy)

	case model.NumericPayload:
		if v.Value == nil {
			return 0, nil
		}
		return applyRange(q.Code, *v.Value, policy)
	}

	return 0, util.NewValidationError("answer", "question %s: unsupported answer type %s", q.Code, q.AnswerType)
}

func firstSet(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func applyRange(code string, v float64, policy string) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, util.NewValidationError("answer", "question %s: score is not a finite number", code)
	}
	if v >= minScore && v <= maxScore {
		return v, nil
	}

	switch policy {
	case config.RangePolicyClamp:
		return math.Max(minScore, math.Min(maxScore, v)), nil
	case config.RangePolicyPassthrough:
		return v, nil
	default:
		return 0, util.NewValidationError("answer", "question %s: score %g is outside [0,4]", code, v)
	}
}

// NormalizeBatch turns one questionnaire save into Answer records. An unknown
// question code fails the whole batch with a NotFoundError; every other
// problem is collected into a single ValidationError. Nothing is returned
// unless the whole batch is valid.
func (n *AnswerNormalizer) NormalizeBatch(questions []model.Question, inputs []model.AnswerInput) ([]model.Answer, error) {
	byCode := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byCode[questions[i].Code] = &questions[i]
	}

	for _, in := range inputs {
		if _, ok := byCode[in.QuestionCode]; !ok {
			return nil, util.NewNotFoundError("question", in.QuestionCode)
		}
	}

	verr := &util.ValidationError{Entity: "response"}
	seen := make(map[string]bool, len(inputs))
	answers := make([]model.Answer, 0, len(inputs))

	for i, in := range inputs {
		q := byCode[in.QuestionCode]
		if seen[q.Code] {
			verr.AddError("question %s answered more than once", q.Code)
			continue
		}
		seen[q.Code] = true

		a := model.Answer{
			QuestionID:      q.ID,
			QuestionCode:    q.Code,
			Position:        i,
			ChoiceKey:       in.ChoiceKey,
			MultiChoiceKeys: in.MultiChoiceKeys,
			AnswerText:      in.AnswerText,
			Numeric:         in.Numeric,
			ScoreSuggested:  in.ScoreSuggested,
			ScoreFinal:      in.ScoreFinal,
			Evidence:        in.Evidence,
			NotApplicable:   in.NotApplicable,
		}

		if in.NotApplicable {
			answers = append(answers, a)
			continue
		}

		score, err := n.Normalize(q, in.Payload(q.AnswerType))
		if err != nil {
			var ve *util.ValidationError
			if errors.As(err, &ve) {
				verr.Errors = append(verr.Errors, ve.Errors...)
				continue
			}
			return nil, err
		}
		a.Score = &score
		answers = append(answers, a)
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return answers, nil
}
