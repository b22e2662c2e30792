package service

import (
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
	"sort"
)

// Evaluators lists the users that own at least one Score, ordered by user id.
// Assignments never contribute here.
func Evaluators(scores []model.Score) []model.Evaluator {
	seen := make(map[string]bool)
	out := make([]model.Evaluator, 0)
	for _, s := range scores {
		if s.UserID == "" || seen[s.UserID] {
			continue
		}
		seen[s.UserID] = true
		out = append(out, model.Evaluator{UserID: s.UserID, Role: s.Role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

type userSet map[string]bool

func (u userSet) add(id string) {
	if id != "" {
		u[id] = true
	}
}

// BuildCoverage counts assigned, started (any response) and submitted (has a
// Score) users, overall and per role.
func BuildCoverage(assignments []model.ProjectAssignment, responses []model.Response, scores []model.Score) model.Coverage {
	assigned, started, submitted := userSet{}, userSet{}, userSet{}
	byRole := make(map[model.UserRole]*[3]userSet)
	role := func(r model.UserRole) *[3]userSet {
		sets, ok := byRole[r]
		if !ok {
			sets = &[3]userSet{{}, {}, {}}
			byRole[r] = sets
		}
		return sets
	}

	for _, a := range assignments {
		assigned.add(a.UserID)
		role(a.Role)[0].add(a.UserID)
	}
	for _, r := range responses {
		started.add(r.UserID)
		role(r.Role)[1].add(r.UserID)
	}
	for _, s := range scores {
		submitted.add(s.UserID)
		role(s.Role)[2].add(s.UserID)
	}

	roles := make([]model.UserRole, 0, len(byRole))
	for r := range byRole {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	cov := model.Coverage{
		AssignedCount:  len(assigned),
		StartedCount:   len(started),
		SubmittedCount: len(submitted),
		SubmittedPct:   util.Percent(len(submitted), len(assigned)),
		ByRole:         make([]model.RoleCoverage, 0, len(roles)),
	}
	for _, r := range roles {
		sets := byRole[r]
		cov.ByRole = append(cov.ByRole, model.RoleCoverage{
			Role:      r,
			Assigned:  len(sets[0]),
			Started:   len(sets[1]),
			Submitted: len(sets[2]),
		})
	}
	return cov
}

// BuildPrincipleBar averages each principle across the evaluators that have
// it, in canonical principle order.
func BuildPrincipleBar(scores []model.Score) []model.PrincipleBar {
	values := make(map[model.Principle][]float64)
	for i := range scores {
		for p, st := range scores[i].Principles() {
			if st.N > 0 {
				values[p] = append(values[p], st.Avg)
			}
		}
	}

	bars := make([]model.PrincipleBar, 0, len(values))
	for _, p := range model.Principles {
		vs, ok := values[p]
		if !ok {
			continue
		}
		avg := util.Round2(util.Mean(vs))
		bars = append(bars, model.PrincipleBar{
			Principle: p,
			Label:     p.Label(),
			Avg:       avg,
			N:         len(vs),
			Tier:      model.TierFor(avg),
		})
	}
	return bars
}

// BuildMatrix averages principle scores per role. Cells without any Score
// for the combination stay nil.
func BuildMatrix(scores []model.Score) model.RolePrincipleMatrix {
	values := make(map[model.UserRole]map[model.Principle][]float64)
	for i := range scores {
		s := &scores[i]
		row, ok := values[s.Role]
		if !ok {
			row = make(map[model.Principle][]float64)
			values[s.Role] = row
		}
		for p, st := range s.Principles() {
			if st.N > 0 {
				row[p] = append(row[p], st.Avg)
			}
		}
	}

	roles := make([]model.UserRole, 0, len(values))
	for r := range values {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	m := model.RolePrincipleMatrix{
		Roles:      roles,
		Principles: append([]model.Principle(nil), model.Principles...),
		Cells:      make([][]*float64, len(roles)),
	}
	for i, r := range roles {
		m.Cells[i] = make([]*float64, len(model.Principles))
		for j, p := range model.Principles {
			if vs, ok := values[r][p]; ok {
				avg := util.Round2(util.Mean(vs))
				m.Cells[i][j] = &avg
			}
		}
	}
	return m
}

// OverallTotals pools every evaluator's totals, weighting by answer count.
func OverallTotals(scores []model.Score) model.ScoreTotals {
	var out model.ScoreTotals
	var sum float64
	for _, s := range scores {
		if s.Totals.N == 0 {
			continue
		}
		if out.N == 0 {
			out.Min, out.Max = s.Totals.Min, s.Totals.Max
		} else {
			out.Min = min(out.Min, s.Totals.Min)
			out.Max = max(out.Max, s.Totals.Max)
		}
		sum += s.Totals.Avg * float64(s.Totals.N)
		out.N += s.Totals.N
	}
	out.Avg = util.Round2(util.SafeDiv(sum, float64(out.N)))
	return out
}

const evidenceTypeOther = "other"

// SummarizeTensions counts tensions by freshly computed review state,
// severity bucket and evidence.
func SummarizeTensions(tensions []model.Tension) model.TensionsSummary {
	sum := model.TensionsSummary{
		Total:          len(tensions),
		ByState:        make(map[model.ReviewState]int, len(model.ReviewStates)),
		EvidenceByType: make(map[string]int),
	}
	for _, st := range model.ReviewStates {
		sum.ByState[st] = 0
	}

	for _, t := range tensions {
		sum.ByState[ComputeReviewState(t.Votes, t.CreatedBy)]++

		if t.Status == model.TensionResolved {
			sum.ResolvedCount++
		}

		switch t.Severity {
		case model.SeverityLow:
			sum.Severity.Low++
		case model.SeverityHigh, model.SeverityCritical:
			sum.Severity.HighOrCritical++
		default:
			sum.Severity.Medium++
		}

		if len(t.Evidence) > 0 {
			sum.WithEvidence++
		}
		for _, e := range t.Evidence {
			typ := e.Type
			if typ == "" {
				typ = evidenceTypeOther
			}
			sum.EvidenceByType[typ]++
		}
	}

	sum.EvidenceCoveragePct = util.Percent(sum.WithEvidence, sum.Total)
	return sum
}
