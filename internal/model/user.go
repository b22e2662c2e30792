package model

// UserRole is the role category handed over by authentication.
type UserRole string

const (
	Admin           UserRole = "admin"
	EthicalExpert   UserRole = "ethical-expert"
	MedicalExpert   UserRole = "medical-expert"
	TechnicalExpert UserRole = "technical-expert"
	LegalExpert     UserRole = "legal-expert"
	EducationExpert UserRole = "education-expert"
	UseCaseOwner    UserRole = "use-case-owner"
	Viewer          UserRole = "viewer"
)

// CanContribute reports whether the role may answer questionnaires, raise
// tensions and vote.
func (r UserRole) CanContribute() bool {
	return r != "" && r != Viewer
}
