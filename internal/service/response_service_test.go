package service

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponseServiceForTest() (*ResponseService, *fakeResponses, *fakeScores) {
	q1 := question("q1", "T1", model.Transparency, model.SingleChoice,
		model.QuestionOption{Key: "a", Score: 4},
		model.QuestionOption{Key: "b", Score: 0})
	q1.Required = true
	q2 := question("q2", "A1", model.Accountability, model.Numeric)
	q2.Order = 1
	questions := &fakeQuestions{questions: []model.Question{q1, q2}}

	responses := &fakeResponses{}
	scores := newFakeScores()
	settings := defaultSettings()
	scoreSvc := NewScoreService(responses, questions, scores, nil, settings)
	scoreSvc.Now = func() time.Time { return baseTime }

	svc := NewResponseService(questions, responses, NewAnswerNormalizer(settings), scoreSvc)
	svc.Now = func() time.Time { return baseTime }
	return svc, responses, scores
}

func TestSaveDraftAndSubmit(t *testing.T) {
	svc, responses, scores := newResponseServiceForTest()
	ctx := context.Background()

	draft, err := svc.SaveDraft(ctx, "p1", "u1", model.EthicalExpert, SaveDraftRequest{
		QuestionnaireKey: "general",
		Answers:          []model.AnswerInput{{QuestionCode: "A1", Numeric: ptr(2)}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResponseDraft, draft.Status)
	assert.Equal(t, 1, draft.QuestionnaireVersion)

	_, err = svc.Submit(ctx, draft.ID, "u1")
	var ve *util.ValidationError
	require.ErrorAs(t, err, &ve, "required T1 is missing")
	assert.Contains(t, ve.Errors[0], "T1")

	draft, err = svc.SaveDraft(ctx, "p1", "u1", model.EthicalExpert, SaveDraftRequest{
		QuestionnaireKey: "general",
		Answers: []model.AnswerInput{
			{QuestionCode: "T1", ChoiceKey: "a"},
			{QuestionCode: "A1", Numeric: ptr(2)},
		},
	})
	require.NoError(t, err)
	require.Len(t, responses.responses, 1, "the open draft is reused")

	result, err := svc.Submit(ctx, draft.ID, "u1")
	require.NoError(t, err)
	assert.True(t, result.Response.IsSubmitted())
	require.Len(t, result.Scores, 1)
	assert.Equal(t, 3.0, result.Scores[0].Totals.Avg)
	assert.Equal(t, 1, scores.upserts)
}

func TestSaveDraft_InvalidBatchKeepsPreviousAnswers(t *testing.T) {
	svc, responses, _ := newResponseServiceForTest()
	ctx := context.Background()

	draft, err := svc.SaveDraft(ctx, "p1", "u1", model.EthicalExpert, SaveDraftRequest{
		QuestionnaireKey: "general",
		Answers:          []model.AnswerInput{{QuestionCode: "T1", ChoiceKey: "b"}},
	})
	require.NoError(t, err)

	_, err = svc.SaveDraft(ctx, "p1", "u1", model.EthicalExpert, SaveDraftRequest{
		QuestionnaireKey: "general",
		Answers:          []model.AnswerInput{{QuestionCode: "T1", ChoiceKey: "zzz"}},
	})
	assert.ErrorIs(t, err, util.ErrValidation)

	stored, err := responses.FindByID(ctx, draft.ID)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, "b", stored.Answers[0].ChoiceKey)
}

func TestSaveDraft_Rejections(t *testing.T) {
	svc, _, _ := newResponseServiceForTest()
	ctx := context.Background()

	_, err := svc.SaveDraft(ctx, "p1", "u1", model.Viewer, SaveDraftRequest{QuestionnaireKey: "general"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.SaveDraft(ctx, "p1", "u1", model.EthicalExpert, SaveDraftRequest{QuestionnaireKey: "unknown"})
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = svc.SaveDraft(ctx, "p1", "u1", model.EthicalExpert, SaveDraftRequest{
		QuestionnaireKey: "general",
		Answers:          []model.AnswerInput{{QuestionCode: "NOPE"}},
	})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSubmit_Rejections(t *testing.T) {
	svc, _, _ := newResponseServiceForTest()
	ctx := context.Background()

	_, err := svc.Submit(ctx, "missing", "u1")
	assert.ErrorIs(t, err, util.ErrNotFound)

	draft, err := svc.SaveDraft(ctx, "p1", "u1", model.EthicalExpert, SaveDraftRequest{
		QuestionnaireKey: "general",
		Answers:          []model.AnswerInput{{QuestionCode: "T1", ChoiceKey: "a"}},
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, draft.ID, "someone-else")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestResubmissionStartsNewResponseAndPools(t *testing.T) {
	svc, responses, _ := newResponseServiceForTest()
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		draft, err := svc.SaveDraft(ctx, "p1", "u1", model.EthicalExpert, SaveDraftRequest{
			QuestionnaireKey: "general",
			Answers:          []model.AnswerInput{{QuestionCode: "T1", ChoiceKey: key}},
		})
		require.NoError(t, err)
		_, err = svc.Submit(ctx, draft.ID, "u1")
		require.NoError(t, err)
	}

	require.Len(t, responses.responses, 2)
	scores, err := svc.Scores.Scores.Find(ctx, "p1", "u1", "general")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 2, scores[0].Totals.N)
	assert.Equal(t, 2.0, scores[0].Totals.Avg)
}

func TestMissingRequired(t *testing.T) {
	q1 := question("q1", "T1", model.Transparency, model.Numeric)
	q1.Required = true
	q2 := question("q2", "T2", model.Transparency, model.Numeric)
	q2.Required = true
	q3 := question("q3", "T3", model.Transparency, model.Numeric)

	missing := MissingRequired([]model.Question{q1, q2, q3}, []model.Answer{{QuestionID: "q2", NotApplicable: true}})
	assert.Equal(t, []string{"T1"}, missing)
}
