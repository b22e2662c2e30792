package model

// Principle is one of the seven fixed ethical-principle categories.
type Principle string

const (
	Transparency              Principle = "transparency"
	HumanAgencyOversight      Principle = "human_agency_oversight"
	TechnicalRobustnessSafety Principle = "technical_robustness_safety"
	PrivacyDataGovernance     Principle = "privacy_data_governance"
	DiversityFairness         Principle = "diversity_fairness"
	SocietalWellbeing         Principle = "societal_wellbeing"
	Accountability            Principle = "accountability"
)

// Principles lists the principles in canonical display order.
var Principles = []Principle{
	Transparency,
	HumanAgencyOversight,
	TechnicalRobustnessSafety,
	PrivacyDataGovernance,
	DiversityFairness,
	SocietalWellbeing,
	Accountability,
}

var principleLabels = map[Principle]string{
	Transparency:              "Transparency",
	HumanAgencyOversight:      "Human Agency & Oversight",
	TechnicalRobustnessSafety: "Technical Robustness & Safety",
	PrivacyDataGovernance:     "Privacy & Data Governance",
	DiversityFairness:         "Diversity, Non-discrimination & Fairness",
	SocietalWellbeing:         "Societal & Environmental Well-being",
	Accountability:            "Accountability",
}

func (p Principle) Valid() bool {
	_, ok := principleLabels[p]
	return ok
}

func (p Principle) Label() string {
	if l, ok := principleLabels[p]; ok {
		return l
	}
	return string(p)
}

// RiskTier buckets a 0-4 principle average for the dashboard bar chart.
type RiskTier string

const (
	TierLow      RiskTier = "Low"
	TierModerate RiskTier = "Moderate"
	TierHigh     RiskTier = "High"
	TierCritical RiskTier = "Critical"
)

// TierFor maps [0,1] Low, (1,2] Moderate, (2,3] High, (3,4] Critical.
func TierFor(avg float64) RiskTier {
	switch {
	case avg <= 1:
		return TierLow
	case avg <= 2:
		return TierModerate
	case avg <= 3:
		return TierHigh
	default:
		return TierCritical
	}
}
