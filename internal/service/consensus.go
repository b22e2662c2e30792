package service

import (
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
)

const (
	acceptThreshold  = 0.67
	disputeThreshold = 0.33
)

// VoteTally counts the valid votes on a tension. Votes by the author and
// malformed votes are not counted.
type VoteTally struct {
	Agree    int
	Disagree int
}

func (t VoteTally) Total() int { return t.Agree + t.Disagree }

// AgreePct is the agreeing share rounded to two decimals, 0 without votes.
func (t VoteTally) AgreePct() float64 {
	return util.Round2(util.SafeDiv(float64(t.Agree), float64(t.Total())))
}

func TallyVotes(votes []model.TensionVote, createdBy string) VoteTally {
	var t VoteTally
	for _, v := range votes {
		if v.UserID == "" || v.UserID == createdBy {
			continue
		}
		switch v.VoteType {
		case model.VoteAgree:
			t.Agree++
		case model.VoteDisagree:
			t.Disagree++
		}
	}
	return t
}

// ComputeReviewState derives the review state of a tension from its votes.
// It is total: any input, including nil votes, yields one of the five
// computed states. Resolved is never returned.
func ComputeReviewState(votes []model.TensionVote, createdBy string) model.ReviewState {
	return reviewStateFor(TallyVotes(votes, createdBy))
}

func reviewStateFor(t VoteTally) model.ReviewState {
	switch t.Total() {
	case 0:
		return model.StateProposed
	case 1:
		return model.StateSingleReview
	}

	pct := t.AgreePct()
	switch {
	case pct >= acceptThreshold:
		return model.StateAccepted
	case pct <= disputeThreshold:
		return model.StateDisputed
	default:
		return model.StateUnderReview
	}
}
