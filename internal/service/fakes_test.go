package service

import (
	"context"
	"errors"
	"ethics_eval_backend/internal/config"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/repository"
	"ethics_eval_backend/internal/util"
	"sort"
	"sync"
	"time"
)

type fakeQuestions struct {
	questions []model.Question
	err       error
}

func (f *fakeQuestions) ListByQuestionnaire(ctx context.Context, questionnaireKey string) ([]model.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Question
	for _, q := range f.questions {
		if q.QuestionnaireKey == questionnaireKey {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeQuestions) FindByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for _, q := range f.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeResponses struct {
	mu        sync.Mutex
	responses []model.Response
	err       error
}

func (f *fakeResponses) Find(ctx context.Context, filter repository.ResponseFilter) ([]model.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Response
	for _, r := range f.responses {
		if r.ProjectID != filter.ProjectID {
			continue
		}
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.QuestionnaireKey != "" && r.QuestionnaireKey != filter.QuestionnaireKey {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResponses) FindByID(ctx context.Context, id string) (*model.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.responses {
		if f.responses[i].ID == id {
			r := f.responses[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeResponses) FindLatest(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.responses) - 1; i >= 0; i-- {
		r := f.responses[i]
		if r.ProjectID == projectID && r.UserID == userID && r.QuestionnaireKey == questionnaireKey {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeResponses) SaveWithAnswers(ctx context.Context, resp *model.Response, answers []model.Answer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if resp.ID == "" {
		resp.ID = model.GenerateUUID()
	}
	for i := range answers {
		answers[i].ResponseID = resp.ID
		answers[i].Position = i
	}
	resp.Answers = answers
	for i := range f.responses {
		if f.responses[i].ID == resp.ID {
			f.responses[i] = *resp
			return nil
		}
	}
	f.responses = append(f.responses, *resp)
	return nil
}

func (f *fakeResponses) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.responses {
		if f.responses[i].ID == id {
			f.responses[i].Status = model.ResponseSubmitted
			f.responses[i].SubmittedAt = &at
			return nil
		}
	}
	return util.NewNotFoundError("response", id)
}

type fakeScores struct {
	mu      sync.Mutex
	scores  map[string]model.Score
	upserts   int
	err       error
	findErr   error
	failUsers map[string]bool
}

func newFakeScores() *fakeScores {
	return &fakeScores{scores: make(map[string]model.Score)}
}

func (f *fakeScores) Upsert(ctx context.Context, s *model.Score) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.failUsers[s.UserID] {
		return errors.New("write failed")
	}
	f.upserts++
	f.scores[s.ProjectID+"|"+s.UserID+"|"+s.QuestionnaireKey] = *s
	return nil
}

func (f *fakeScores) Find(ctx context.Context, projectID, userID, questionnaireKey string) ([]model.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []model.Score
	for _, s := range f.scores {
		if s.ProjectID != projectID {
			continue
		}
		if userID != "" && s.UserID != userID {
			continue
		}
		if questionnaireKey != "" && s.QuestionnaireKey != questionnaireKey {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type fakeTensions struct {
	mu       sync.Mutex
	tensions []model.Tension
	err      error
}

func (f *fakeTensions) Create(ctx context.Context, t *model.Tension) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = model.GenerateUUID()
	}
	f.tensions = append(f.tensions, *t)
	return nil
}

func (f *fakeTensions) FindByID(ctx context.Context, id string) (*model.Tension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tensions {
		if f.tensions[i].ID == id {
			t := f.tensions[i]
			t.Votes = append([]model.TensionVote(nil), t.Votes...)
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeTensions) FindByProject(ctx context.Context, projectID string) ([]model.Tension, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Tension
	for _, t := range f.tensions {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTensions) UpsertVote(ctx context.Context, v *model.TensionVote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tensions {
		t := &f.tensions[i]
		if t.ID != v.TensionID {
			continue
		}
		for j := range t.Votes {
			if t.Votes[j].UserID == v.UserID {
				t.Votes[j].VoteType = v.VoteType
				return nil
			}
		}
		t.Votes = append(t.Votes, *v)
		return nil
	}
	return util.NewNotFoundError("tension", v.TensionID)
}

type fakeAssignments struct {
	assignments []model.ProjectAssignment
	err         error
}

func (f *fakeAssignments) ListAssigned(ctx context.Context, projectID, questionnaireKey string) ([]model.ProjectAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.ProjectAssignment
	for _, a := range f.assignments {
		if a.ProjectID == projectID && (questionnaireKey == "" || a.QuestionnaireKey == questionnaireKey) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired int
}

func (f *fakeLocker) Acquire(ctx context.Context, projectID, userID, questionnaireKey string, ttl time.Duration) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	key := projectID + ":" + userID + ":" + questionnaireKey
	if f.held[key] {
		return nil, util.ErrLockHeld
	}
	f.held[key] = true
	f.acquired++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, key)
	}, nil
}

func defaultSettings() *ScoringSettings {
	return NewScoringSettings(config.DefaultScoringConfig())
}

func ptr(v float64) *float64 { return &v }

func question(id, code string, p model.Principle, t model.AnswerType, opts ...model.QuestionOption) model.Question {
	q := model.Question{
		QuestionnaireKey: "general",
		Code:             code,
		Principle:        p,
		AnswerType:       t,
		Options:          opts,
		Weight:           1,
	}
	q.ID = id
	return q
}

func scoredAnswer(questionID string, score float64) model.Answer {
	return model.Answer{QuestionID: questionID, Score: ptr(score)}
}

func submittedResponse(id, userID string, role model.UserRole, at time.Time, answers ...model.Answer) model.Response {
	r := model.Response{
		ProjectID:        "p1",
		UserID:           userID,
		Role:             role,
		QuestionnaireKey: "general",
		Status:           model.ResponseSubmitted,
		SubmittedAt:      &at,
		Answers:          answers,
	}
	r.ID = id
	return r
}
