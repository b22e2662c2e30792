package service

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/repository"
	"ethics_eval_backend/internal/util"
	"ethics_eval_backend/pkg/tracing"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RiskService ranks the questions that drag a project's scores down.
type RiskService struct {
	Scores    ScoreStore
	Responses ResponseStore
	Questions QuestionStore
	Settings  *ScoringSettings
}

func NewRiskService(scores ScoreStore, responses ResponseStore, questions QuestionStore, settings *ScoringSettings) *RiskService {
	return &RiskService{Scores: scores, Responses: responses, Questions: questions, Settings: settings}
}

// RankRiskyQuestions returns the top risky questions of a project, lowest
// average score first, with short evidence excerpts attached. An empty
// questionnaireKey covers every questionnaire.
func (s *RiskService) RankRiskyQuestions(ctx context.Context, projectID, questionnaireKey string) ([]model.RiskEntry, error) {
	ctx, span := tracing.Tracer.Start(ctx, "RiskService.RankRiskyQuestions", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("questionnaire.key", questionnaireKey),
	))
	defer span.End()

	scores, err := s.Scores.Find(ctx, projectID, "", questionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	responses, err := s.Responses.Find(ctx, repository.ResponseFilter{
		ProjectID:        projectID,
		QuestionnaireKey: questionnaireKey,
		Status:           model.ResponseSubmitted,
	})
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	var questions map[string]model.Question
	if !hasQuestionScores(scores) {
		questions, err = questionsFor(ctx, s.Questions, responses)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
	}

	cfg := s.Settings.Get()
	ranked := RankRisks(scores, responses, questions, cfg.RiskTopN)
	AttachEvidence(ranked, responses, EvidenceOptions{
		PerQuestion: cfg.EvidencePerRisk,
		MinChars:    cfg.EvidenceMinChars,
		MaxChars:    cfg.EvidenceMaxChars,
	})
	return ranked, nil
}

func hasQuestionScores(scores []model.Score) bool {
	for _, s := range scores {
		if len(s.ByQuestion) > 0 {
			return true
		}
	}
	return false
}

func questionsFor(ctx context.Context, store QuestionStore, responses []model.Response) (map[string]model.Question, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, r := range responses {
		for _, a := range r.Answers {
			if !seen[a.QuestionID] {
				seen[a.QuestionID] = true
				ids = append(ids, a.QuestionID)
			}
		}
	}
	qs, err := store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	m := make(map[string]model.Question, len(qs))
	for _, q := range qs {
		m[q.ID] = q
	}
	return m, nil
}

type riskAcc struct {
	entry model.RiskEntry
	sum   float64
	roles map[model.UserRole]bool
}

type riskAccumulator struct {
	order []string
	byID  map[string]*riskAcc
}

func newRiskAccumulator() *riskAccumulator {
	return &riskAccumulator{byID: make(map[string]*riskAcc)}
}

func (ra *riskAccumulator) add(questionID, code string, p model.Principle, role model.UserRole, score float64) {
	acc, ok := ra.byID[questionID]
	if !ok {
		acc = &riskAcc{
			entry: model.RiskEntry{QuestionID: questionID, QuestionCode: code, Principle: p},
			roles: make(map[model.UserRole]bool),
		}
		ra.byID[questionID] = acc
		ra.order = append(ra.order, questionID)
	}
	if acc.entry.QuestionCode == "" {
		acc.entry.QuestionCode = code
	}
	if acc.entry.Principle == "" {
		acc.entry.Principle = p
	}
	acc.sum += score
	acc.entry.N++
	if role != "" {
		acc.roles[role] = true
	}
}

func (ra *riskAccumulator) ranked(topN int) []model.RiskEntry {
	out := make([]model.RiskEntry, 0, len(ra.order))
	for _, id := range ra.order {
		acc := ra.byID[id]
		e := acc.entry
		e.AvgRiskScore = util.Round2(util.SafeDiv(acc.sum, float64(e.N)))
		e.RolesInvolved = make([]model.UserRole, 0, len(acc.roles))
		for r := range acc.roles {
			e.RolesInvolved = append(e.RolesInvolved, r)
		}
		sort.Slice(e.RolesInvolved, func(i, j int) bool { return e.RolesInvolved[i] < e.RolesInvolved[j] })
		out = append(out, e)
	}

	// lowest average first; ties keep first-seen order
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgRiskScore < out[j].AvgRiskScore })

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// RankRisks ranks questions from the Scores' per-question breakdown. When no
// Score carries one it falls back to the raw submitted answers, resolving
// principles through questions (which may be nil). Not-applicable answers
// never count.
func RankRisks(scores []model.Score, responses []model.Response, questions map[string]model.Question, topN int) []model.RiskEntry {
	acc := newRiskAccumulator()

	if hasQuestionScores(scores) {
		for _, s := range scores {
			for _, qs := range s.ByQuestion {
				if qs.IsNA {
					continue
				}
				acc.add(qs.QuestionID, qs.QuestionCode, qs.PrincipleKey, s.Role, qs.Score)
			}
		}
		return acc.ranked(topN)
	}

	for _, r := range responses {
		if !r.IsSubmitted() {
			continue
		}
		for _, a := range r.Answers {
			if a.NotApplicable || a.Score == nil {
				continue
			}
			q := questions[a.QuestionID]
			code := a.QuestionCode
			if code == "" {
				code = q.Code
			}
			acc.add(a.QuestionID, code, q.Principle, r.Role, *a.Score)
		}
	}
	return acc.ranked(topN)
}

type EvidenceOptions struct {
	PerQuestion int
	MinChars    int
	MaxChars    int
}

// AttachEvidence fills each entry's Evidence with up to PerQuestion free-text
// excerpts taken from submitted answers to that question. Texts shorter than
// MinChars are ignored; longer than MaxChars are truncated.
func AttachEvidence(entries []model.RiskEntry, responses []model.Response, opts EvidenceOptions) {
	if opts.PerQuestion <= 0 {
		return
	}
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.QuestionID] = i
	}

	for _, r := range responses {
		if !r.IsSubmitted() {
			continue
		}
		for _, a := range r.Answers {
			i, ok := index[a.QuestionID]
			if !ok || len(entries[i].Evidence) >= opts.PerQuestion {
				continue
			}
			text := strings.TrimSpace(a.AnswerText)
			if text == "" || utf8.RuneCountInString(text) < opts.MinChars {
				continue
			}
			entries[i].Evidence = append(entries[i].Evidence, util.Truncate(text, opts.MaxChars))
		}
	}
}
