package domain

import "time"

// Classification buckets a skill match percentage.
type Classification string

const (
	ClassificationStrong Classification = "Strong"
	ClassificationMid    Classification = "Mid"
	ClassificationWeak   Classification = "Weak"
)

// InferenceSource records where a required skill set came from.
type InferenceSource string

const (
	InferenceSourceLLM      InferenceSource = "llm"
	InferenceSourceFallback InferenceSource = "fallback"
)

// RequiredSkillSet is produced once per assignment attempt and never mutated.
type RequiredSkillSet struct {
	Skills               []string        `json:"skills"`
	Complexity           int             `json:"complexity"`
	SpecializedKnowledge []string        `json:"specialized_knowledge,omitempty"`
	Source               InferenceSource `json:"source"`
	DegradedReason       string          `json:"degraded_reason,omitempty"`
}

// SkillMatchResult compares required skills with a technician's skills.
type SkillMatchResult struct {
	Percentage     int            `json:"percentage"`
	Classification Classification `json:"classification"`
	MatchedSkills  []string       `json:"matched_skills"`
	MissingSkills  []string       `json:"missing_skills"`
}

// Candidate is one technician as evaluated for one ticket.
type Candidate struct {
	Technician Technician       `json:"technician"`
	SkillMatch SkillMatchResult `json:"skill_match"`
	Available  bool             `json:"available"`
	Tier       int              `json:"tier"`
	Reasoning  string           `json:"reasoning"`
}

// AssignmentStatus distinguishes real assignments, fallback routing and failures.
type AssignmentStatus string

const (
	AssignmentStatusAssigned AssignmentStatus = "ASSIGNED"
	AssignmentStatusFallback AssignmentStatus = "FALLBACK"
	AssignmentStatusFailed   AssignmentStatus = "FAILED"
)

// Failure codes carried by FAILED results.
const (
	FailureValidation = "VALIDATION_FAILED"
	FailureAssignment = "ASSIGNMENT_FAILED"
	FailureCancelled  = "CANCELLED"
)

// FallbackTier is the tier of unavailable technicians and fallback results.
const FallbackTier = 6

// CandidateAudit keeps a non-selected candidate for traceability.
type CandidateAudit struct {
	TechnicianID   string         `json:"technician_id"`
	TechnicianName string         `json:"technician_name"`
	Tier           int            `json:"tier"`
	Percentage     int            `json:"percentage"`
	Classification Classification `json:"classification"`
	Available      bool           `json:"available"`
	Reasoning      string         `json:"reasoning"`
}

// AssignmentResult is the single outcome of one assignment attempt.
type AssignmentResult struct {
	ID                   string           `json:"id"`
	TicketID             string           `json:"ticket_id"`
	Status               AssignmentStatus `json:"status"`
	TechnicianID         string           `json:"technician_id,omitempty"`
	TechnicianName       string           `json:"technician_name,omitempty"`
	TechnicianEmail      string           `json:"technician_email,omitempty"`
	Tier                 int              `json:"tier"`
	SkillMatchPercentage int              `json:"skill_match_percentage"`
	SkillClassification  Classification   `json:"skill_match_classification,omitempty"`
	Available            bool             `json:"available"`
	MatchedSkills        []string         `json:"matched_skills"`
	MissingSkills        []string         `json:"missing_skills"`
	RequiredSkills       RequiredSkillSet `json:"required_skills"`
	Reasoning            string           `json:"reasoning"`
	FailureCode          string           `json:"failure_code,omitempty"`
	Rejected             []CandidateAudit `json:"rejected_candidates"`
	AssignedAt           time.Time        `json:"assigned_at"`
}

// IsFallback reports whether the ticket was routed to the fallback pool.
func (r AssignmentResult) IsFallback() bool {
	return r.Status == AssignmentStatusFallback
}

// Failed reports whether the assignment process itself failed.
func (r AssignmentResult) Failed() bool {
	return r.Status == AssignmentStatusFailed
}
