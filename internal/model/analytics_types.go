package model

import "time"

// Evaluator is a user that produced at least one Score.
type Evaluator struct {
	UserID string   `json:"userId"`
	Role   UserRole `json:"role"`
}

type RoleCoverage struct {
	Role      UserRole `json:"role"`
	Assigned  int      `json:"assigned"`
	Started   int      `json:"started"`
	Submitted int      `json:"submitted"`
}

// Coverage is participation: assigned vs started vs submitted.
type Coverage struct {
	AssignedCount  int            `json:"assignedCount"`
	StartedCount   int            `json:"startedCount"`
	SubmittedCount int            `json:"submittedCount"`
	SubmittedPct   float64        `json:"submittedPct"`
	ByRole         []RoleCoverage `json:"byRole"`
}

type PrincipleBar struct {
	Principle Principle `json:"principle"`
	Label     string    `json:"label"`
	Avg       float64   `json:"avg"`
	N         int       `json:"n"`
	Tier      RiskTier  `json:"tier"`
}

// RolePrincipleMatrix has one row per role and one column per principle.
// A nil cell means no Score exists for that combination.
type RolePrincipleMatrix struct {
	Roles      []UserRole   `json:"roles"`
	Principles []Principle  `json:"principles"`
	Cells      [][]*float64 `json:"cells"`
}

type RiskEntry struct {
	QuestionID    string     `json:"questionId"`
	QuestionCode  string     `json:"questionCode"`
	Principle     Principle  `json:"principle,omitempty"`
	AvgRiskScore  float64    `json:"avgRiskScore"`
	N             int        `json:"n"`
	RolesInvolved []UserRole `json:"rolesInvolved"`
	Evidence      []string   `json:"evidence,omitempty"`
}

type SeverityBuckets struct {
	Low            int `json:"low"`
	Medium         int `json:"medium"`
	HighOrCritical int `json:"highOrCritical"`
}

type TensionsSummary struct {
	Total               int                 `json:"total"`
	ByState             map[ReviewState]int `json:"byState"`
	ResolvedCount       int                 `json:"resolvedCount"`
	Severity            SeverityBuckets     `json:"severity"`
	WithEvidence        int                 `json:"withEvidence"`
	EvidenceCoveragePct float64             `json:"evidenceCoveragePct"`
	EvidenceByType      map[string]int      `json:"evidenceByType"`
}

type TensionRow struct {
	ID             string        `json:"id"`
	Principle1     Principle     `json:"principle1"`
	Principle2     Principle     `json:"principle2"`
	ClaimStatement string        `json:"claimStatement"`
	Severity       Severity      `json:"severity"`
	Status         TensionStatus `json:"status"`
	ReviewState    ReviewState   `json:"reviewState"`
	CreatedBy      string        `json:"createdBy"`
	AgreeCount     int           `json:"agreeCount"`
	DisagreeCount  int           `json:"disagreeCount"`
	AgreePct       float64       `json:"agreePct"`
	EvidenceCount  int           `json:"evidenceCount"`
	EvidenceTypes  []string      `json:"evidenceTypes"`
}

// AnalyticsPayload feeds the project dashboard.
type AnalyticsPayload struct {
	ProjectID        string              `json:"projectId"`
	QuestionnaireKey string              `json:"questionnaireKey"`
	Evaluators       []Evaluator         `json:"evaluators"`
	Coverage         Coverage            `json:"coverage"`
	PrincipleBar     []PrincipleBar      `json:"principleBar"`
	Matrix           RolePrincipleMatrix `json:"matrix"`
	TopRisks         []RiskEntry         `json:"topRisks"`
	Tensions         TensionsSummary     `json:"tensions"`
}

// ReportMetrics is the only numeric source the report narrative may use.
type ReportMetrics struct {
	ProjectID         string              `json:"projectId"`
	QuestionnaireKey  string              `json:"questionnaireKey"`
	GeneratedAt       time.Time           `json:"generatedAt"`
	Evaluators        []Evaluator         `json:"evaluators"`
	Coverage          Coverage            `json:"coverage"`
	Overall           ScoreTotals         `json:"overall"`
	Principles        []PrincipleBar      `json:"principles"`
	Matrix            RolePrincipleMatrix `json:"matrix"`
	TopRiskyQuestions []RiskEntry         `json:"topRiskyQuestions"`
	TensionsSummary   TensionsSummary     `json:"tensionsSummary"`
	Tensions          []TensionRow        `json:"tensions"`
}
