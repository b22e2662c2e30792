package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		avg  float64
		want RiskTier
	}{
		{0, TierLow},
		{1, TierLow},
		{1.01, TierModerate},
		{2, TierModerate},
		{2.5, TierHigh},
		{3, TierHigh},
		{3.01, TierCritical},
		{4, TierCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.avg), "avg=%v", tt.avg)
	}
}

func TestPrinciples(t *testing.T) {
	assert.Len(t, Principles, 7)
	for _, p := range Principles {
		assert.True(t, p.Valid())
		assert.NotEqual(t, string(p), p.Label())
	}
	assert.False(t, Principle("beauty").Valid())
	assert.Equal(t, "beauty", Principle("beauty").Label())
}

func TestQuestionValidate(t *testing.T) {
	valid := Question{
		QuestionnaireKey: "general-v1",
		Code:             "T1",
		Principle:        Transparency,
		AnswerType:       SingleChoice,
		Options:          []QuestionOption{{Key: "a", Score: 4}, {Key: "b", Score: 0}},
	}
	require.NoError(t, valid.Validate())

	noOptions := valid
	noOptions.Options = nil
	assert.Error(t, noOptions.Validate())

	openText := valid
	openText.AnswerType = OpenText
	openText.Options = nil
	assert.NoError(t, openText.Validate())

	badPrinciple := valid
	badPrinciple.Principle = "beauty"
	assert.Error(t, badPrinciple.Validate())

	badOption := valid
	badOption.Options = []QuestionOption{{Key: "a", Score: 5}}
	assert.Error(t, badOption.Validate())
}

func TestQuestionOptionLookup(t *testing.T) {
	q := Question{Options: []QuestionOption{{Key: "a", Score: 4}}}
	o, ok := q.Option("a")
	assert.True(t, ok)
	assert.Equal(t, 4.0, o.Score)
	_, ok = q.Option("z")
	assert.False(t, ok)

	assert.Equal(t, 1.0, q.EffectiveWeight())
	q.Weight = 2
	assert.Equal(t, 2.0, q.EffectiveWeight())
}

func TestAnswerInputPayload(t *testing.T) {
	n := 3.0
	in := AnswerInput{
		ChoiceKey:       "a",
		MultiChoiceKeys: []string{"x", "y"},
		AnswerText:      "free text",
		Numeric:         &n,
	}

	assert.Equal(t, SingleChoicePayload{ChoiceKey: "a"}, in.Payload(SingleChoice))
	assert.Equal(t, MultiChoicePayload{Keys: []string{"x", "y"}}, in.Payload(MultiChoice))
	assert.Equal(t, NumericPayload{Value: &n}, in.Payload(Numeric))

	ot, ok := in.Payload(OpenText).(OpenTextPayload)
	require.True(t, ok)
	assert.Equal(t, "free text", ot.Text)
	assert.Equal(t, OpenText, ot.AnswerType())

	assert.Nil(t, in.Payload("slider"))
}

func TestTensionValidate(t *testing.T) {
	tension := Tension{
		ProjectID:      "p1",
		Principle1:     Transparency,
		Principle2:     PrivacyDataGovernance,
		ClaimStatement: "Explaining decisions exposes patient data",
		Severity:       SeverityHigh,
		CreatedBy:      "u1",
	}
	require.NoError(t, tension.Validate())

	same := tension
	same.Principle2 = Transparency
	assert.Error(t, same.Validate())

	badSeverity := tension
	badSeverity.Severity = "extreme"
	assert.Error(t, badSeverity.Validate())
}

func TestUserRoleCanContribute(t *testing.T) {
	assert.True(t, EthicalExpert.CanContribute())
	assert.False(t, Viewer.CanContribute())
	assert.False(t, UserRole("").CanContribute())
}
