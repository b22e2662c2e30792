package service

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func scoringQuestions() []model.Question {
	return []model.Question{
		question("q1", "T1", model.Transparency, model.Numeric),
		question("q2", "T2", model.Transparency, model.Numeric),
		question("q3", "A1", model.Accountability, model.Numeric),
		question("q4", "P1", model.PrivacyDataGovernance, model.Numeric),
		question("q5", "S1", model.SocietalWellbeing, model.OpenText),
	}
}

func newScoreServiceForTest(responses ...model.Response) (*ScoreService, *fakeScores) {
	scores := newFakeScores()
	svc := NewScoreService(
		&fakeResponses{responses: responses},
		&fakeQuestions{questions: scoringQuestions()},
		scores,
		nil,
		defaultSettings(),
	)
	svc.Now = func() time.Time { return baseTime }
	return svc, scores
}

func TestComputeScores_PoolsResubmissions(t *testing.T) {
	svc, store := newScoreServiceForTest(
		submittedResponse("r1", "u1", model.EthicalExpert, baseTime,
			scoredAnswer("q1", 4), scoredAnswer("q2", 2), scoredAnswer("q3", 1)),
		submittedResponse("r2", "u1", model.EthicalExpert, baseTime.Add(time.Hour),
			scoredAnswer("q1", 3), scoredAnswer("q4", 0)),
	)

	scores, err := svc.ComputeScores(context.Background(), "p1", "u1", "general")
	require.NoError(t, err)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Equal(t, 5, s.Totals.N)
	assert.Equal(t, 2.0, s.Totals.Avg)
	assert.Equal(t, 0.0, s.Totals.Min)
	assert.Equal(t, 4.0, s.Totals.Max)

	byP := s.Principles()
	assert.Equal(t, model.PrincipleStat{Avg: 3, N: 3, Min: 2, Max: 4}, byP[model.Transparency])
	assert.Equal(t, model.PrincipleStat{Avg: 1, N: 1, Min: 1, Max: 1}, byP[model.Accountability])
	assert.Equal(t, 1, store.upserts)
	assert.Equal(t, ScoreID("p1", "u1", "general"), s.ID)
}

func TestComputeScores_DedupKeepsLatest(t *testing.T) {
	svc, _ := newScoreServiceForTest(
		submittedResponse("r1", "u1", model.EthicalExpert, baseTime,
			scoredAnswer("q1", 4), scoredAnswer("q2", 2), scoredAnswer("q3", 1)),
		submittedResponse("r2", "u1", model.LegalExpert, baseTime.Add(time.Hour),
			scoredAnswer("q1", 3), scoredAnswer("q4", 0)),
	)
	cfg := svc.Settings.Get()
	cfg.DedupResubmissions = true
	svc.Settings.Set(cfg)

	scores, err := svc.ComputeScores(context.Background(), "p1", "u1", "general")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 2, scores[0].Totals.N)
	assert.Equal(t, 1.5, scores[0].Totals.Avg)
	assert.Equal(t, model.LegalExpert, scores[0].Role)
}

func TestComputeScores_NotApplicableAndUnknownQuestions(t *testing.T) {
	na := model.Answer{QuestionID: "q3", NotApplicable: true}
	unscored := model.Answer{QuestionID: "q5"}
	unknown := scoredAnswer("gone", 0)

	svc, _ := newScoreServiceForTest(
		submittedResponse("r1", "u1", model.TechnicalExpert, baseTime,
			scoredAnswer("q1", 2), na, unscored, unknown),
	)

	scores, err := svc.ComputeScores(context.Background(), "p1", "u1", "general")
	require.NoError(t, err)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Equal(t, 1, s.Totals.N)
	assert.Equal(t, 2.0, s.Totals.Avg)
	require.Len(t, s.ByQuestion, 3)
	assert.False(t, s.ByQuestion[0].IsNA)
	assert.True(t, s.ByQuestion[1].IsNA)
	assert.True(t, s.ByQuestion[2].IsNA)
	assert.NotContains(t, s.Principles(), model.Accountability)
}

func TestComputeScores_NoSubmittedResponses(t *testing.T) {
	draft := submittedResponse("r1", "u1", model.EthicalExpert, baseTime, scoredAnswer("q1", 2))
	draft.Status = model.ResponseDraft
	draft.SubmittedAt = nil

	svc, store := newScoreServiceForTest(draft)

	scores, err := svc.ComputeScores(context.Background(), "p1", "u1", "general")
	assert.NoError(t, err)
	assert.Nil(t, scores)
	assert.Zero(t, store.upserts)
}

func TestComputeScores_Idempotent(t *testing.T) {
	svc, _ := newScoreServiceForTest(
		submittedResponse("r1", "u1", model.EthicalExpert, baseTime,
			scoredAnswer("q1", 1.25), scoredAnswer("q3", 3.5), scoredAnswer("q4", 2)),
	)

	first, err := svc.ComputeScores(context.Background(), "p1", "u1", "general")
	require.NoError(t, err)
	second, err := svc.ComputeScores(context.Background(), "p1", "u1", "general")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeScores_RequiresProject(t *testing.T) {
	svc, _ := newScoreServiceForTest()
	_, err := svc.ComputeScores(context.Background(), "", "u1", "general")
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestComputeScores_RecomputeLock(t *testing.T) {
	svc, _ := newScoreServiceForTest(
		submittedResponse("r1", "u1", model.EthicalExpert, baseTime, scoredAnswer("q1", 2)),
	)
	locker := &fakeLocker{}
	svc.Locker = locker
	cfg := svc.Settings.Get()
	cfg.RecomputeLock = true
	svc.Settings.Set(cfg)

	_, err := svc.ComputeScores(context.Background(), "p1", "u1", "general")
	require.NoError(t, err)
	assert.Equal(t, 1, locker.acquired)
	assert.Empty(t, locker.held, "lock released after computing")

	release, err := locker.Acquire(context.Background(), "p1", "u1", "general", time.Second)
	require.NoError(t, err)
	defer release()

	_, err = svc.ComputeScores(context.Background(), "p1", "u1", "general")
	assert.ErrorIs(t, err, util.ErrLockHeld)
}

func TestGroupResponses_SeparatesUsersAndQuestionnaires(t *testing.T) {
	other := submittedResponse("r3", "u1", model.EthicalExpert, baseTime.Add(2*time.Hour), scoredAnswer("q1", 1))
	other.QuestionnaireKey = "ethical"

	groups := GroupResponses([]model.Response{
		submittedResponse("r2", "u2", model.LegalExpert, baseTime.Add(time.Hour), scoredAnswer("q1", 1)),
		submittedResponse("r1", "u1", model.EthicalExpert, baseTime, scoredAnswer("q1", 1)),
		other,
	}, false)

	require.Len(t, groups, 3)
	assert.Equal(t, "u1", groups[0].UserID)
	assert.Equal(t, "general", groups[0].QuestionnaireKey)
	assert.Equal(t, "u2", groups[1].UserID)
	assert.Equal(t, "ethical", groups[2].QuestionnaireKey)
}

func TestRecomputeProject_ContinuesPastFailures(t *testing.T) {
	svc, store := newScoreServiceForTest(
		submittedResponse("r1", "u1", model.EthicalExpert, baseTime, scoredAnswer("q1", 2)),
		submittedResponse("r2", "u2", model.LegalExpert, baseTime, scoredAnswer("q1", 3)),
		submittedResponse("r3", "u3", model.MedicalExpert, baseTime, scoredAnswer("q1", 4)),
	)
	store.failUsers = map[string]bool{"u2": true}

	result, err := svc.RecomputeProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Triples)
	assert.Equal(t, 2, result.Computed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "u2", result.Failed[0].UserID)
	assert.Equal(t, 2, store.upserts)
}

func TestBuildScore_CoverageInvariant(t *testing.T) {
	questions := make(map[string]model.Question)
	for _, q := range scoringQuestions() {
		questions[q.ID] = q
	}
	ids := []string{"q1", "q2", "q3", "q4", "q5"}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("principle counts sum to the total", prop.ForAll(
		func(picks []int, values []float64, na []bool) bool {
			var answers []model.Answer
			for i, pick := range picks {
				a := model.Answer{QuestionID: ids[pick]}
				if i < len(na) && na[i] {
					a.NotApplicable = true
				} else if i < len(values) {
					v := values[i]
					a.Score = &v
				}
				answers = append(answers, a)
			}

			g := ScoreGroup{UserID: "u1", QuestionnaireKey: "general", Role: model.EthicalExpert,
				Responses: []model.Response{{Answers: answers}}}
			s := BuildScore("p1", g, questions, baseTime)

			sum := 0
			for _, st := range s.Principles() {
				if st.N > s.Totals.N || st.Min > st.Max || st.Avg < st.Min-0.01 || st.Avg > st.Max+0.01 {
					return false
				}
				sum += st.N
			}
			return sum == s.Totals.N && s.Totals.Avg >= 0 && s.Totals.Avg <= 4
		},
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.SliceOf(gen.Float64Range(0, 4)),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
