package service

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
	"ethics_eval_backend/pkg/logger"
	"ethics_eval_backend/pkg/monitoring"
	"fmt"

	"go.uber.org/zap"
)

type TensionService struct {
	Tensions TensionStore
}

func NewTensionService(tensions TensionStore) *TensionService {
	return &TensionService{Tensions: tensions}
}

type CreateTensionRequest struct {
	Principle1     model.Principle         `json:"principle1" binding:"required"`
	Principle2     model.Principle         `json:"principle2" binding:"required"`
	ClaimStatement string                  `json:"claimStatement" binding:"required"`
	Severity       model.Severity          `json:"severity"`
	Evidence       []model.TensionEvidence `json:"evidence"`
}

// CreateTension records a new tension raised by a contributing role.
func (s *TensionService) CreateTension(ctx context.Context, projectID, userID string, role model.UserRole, req CreateTensionRequest) (*model.TensionRow, error) {
	if !role.CanContribute() {
		return nil, fmt.Errorf("role %q cannot raise tensions: %w", role, util.ErrPermissionDenied)
	}

	severity := req.Severity
	if severity == "" {
		severity = model.SeverityMedium
	}

	t := &model.Tension{
		ProjectID:      projectID,
		Principle1:     req.Principle1,
		Principle2:     req.Principle2,
		ClaimStatement: req.ClaimStatement,
		Severity:       severity,
		Evidence:       req.Evidence,
		CreatedBy:      userID,
		Status:         model.TensionOpen,
	}
	if err := t.Validate(); err != nil {
		return nil, util.NewValidationError("tension", "%v", err)
	}

	if err := s.Tensions.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tension: %w", err)
	}

	logger.Log.Info("Tension created",
		zap.String("tensionId", t.ID),
		zap.String("projectId", projectID),
		zap.String("createdBy", userID))

	row := BuildTensionRow(*t)
	return &row, nil
}

// CastVote records or replaces the user's vote. Authors cannot vote on their
// own tension and viewers cannot vote at all.
func (s *TensionService) CastVote(ctx context.Context, tensionID, userID string, role model.UserRole, voteType model.VoteType) (*model.TensionRow, error) {
	if !role.CanContribute() {
		return nil, fmt.Errorf("role %q cannot vote: %w", role, util.ErrPermissionDenied)
	}
	if voteType != model.VoteAgree && voteType != model.VoteDisagree {
		return nil, util.NewValidationError("vote", "voteType must be agree or disagree, got %q", voteType)
	}

	t, err := s.Tensions.FindByID(ctx, tensionID)
	if err != nil {
		return nil, fmt.Errorf("load tension: %w", err)
	}
	if t == nil {
		return nil, util.NewNotFoundError("tension", tensionID)
	}
	if t.CreatedBy == userID {
		return nil, fmt.Errorf("author cannot vote on own tension: %w", util.ErrPermissionDenied)
	}

	vote := model.TensionVote{TensionID: t.ID, UserID: userID, VoteType: voteType}
	if err := s.Tensions.UpsertVote(ctx, &vote); err != nil {
		return nil, fmt.Errorf("record vote: %w", err)
	}
	monitoring.TensionVotes.WithLabelValues(string(voteType)).Inc()

	replaced := false
	for i := range t.Votes {
		if t.Votes[i].UserID == userID {
			t.Votes[i].VoteType = voteType
			replaced = true
		}
	}
	if !replaced {
		t.Votes = append(t.Votes, vote)
	}

	row := BuildTensionRow(*t)
	logger.Log.Info("Tension vote recorded",
		zap.String("tensionId", t.ID),
		zap.String("userId", userID),
		zap.String("voteType", string(voteType)),
		zap.String("reviewState", string(row.ReviewState)))
	return &row, nil
}

func (s *TensionService) ListTensions(ctx context.Context, projectID string) ([]model.TensionRow, error) {
	ts, err := s.Tensions.FindByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load tensions: %w", err)
	}
	return BuildTensionRows(ts), nil
}

// BuildTensionRow flattens a tension with its freshly computed review state.
func BuildTensionRow(t model.Tension) model.TensionRow {
	tally := TallyVotes(t.Votes, t.CreatedBy)

	types := make([]string, 0, len(t.Evidence))
	seen := make(map[string]bool)
	for _, e := range t.Evidence {
		if e.Type != "" && !seen[e.Type] {
			seen[e.Type] = true
			types = append(types, e.Type)
		}
	}

	return model.TensionRow{
		ID:             t.ID,
		Principle1:     t.Principle1,
		Principle2:     t.Principle2,
		ClaimStatement: t.ClaimStatement,
		Severity:       t.Severity,
		Status:         t.Status,
		ReviewState:    reviewStateFor(tally),
		CreatedBy:      t.CreatedBy,
		AgreeCount:     tally.Agree,
		DisagreeCount:  tally.Disagree,
		AgreePct:       util.Round1(tally.AgreePct() * 100),
		EvidenceCount:  len(t.Evidence),
		EvidenceTypes:  types,
	}
}

func BuildTensionRows(ts []model.Tension) []model.TensionRow {
	rows := make([]model.TensionRow, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, BuildTensionRow(t))
	}
	return rows
}
