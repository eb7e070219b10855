package types

import "github.com/google/uuid"

type GapSeverity string

const (
	GapSeverityCritical GapSeverity = "critical"
	GapSeverityWarning  GapSeverity = "warning"
	GapSeverityInfo     GapSeverity = "info"
)

type GapType string

const (
	GapTypeNeverLearned GapType = "never_learned"
	GapTypeWeakArea     GapType = "weak_area"
	GapTypeRegression   GapType = "regression"
)

// KnowledgeGap is derived on every request and never persisted; the
// descending PriorityScore ordering is the contract.
type KnowledgeGap struct {
	DomainID        uuid.UUID   `json:"domain_id"`
	DomainName      string      `json:"domain_name"`
	CurrentMastery  float64     `json:"current_mastery"`
	TargetThreshold float64     `json:"target_threshold"`
	Severity        GapSeverity `json:"severity"`
	GapType         GapType     `json:"gap_type"`
	ExamWeight      float64     `json:"exam_weight"`
	Recommendation  string      `json:"recommendation"`
	PriorityScore   float64     `json:"priority_score"`
}

type SelectionReason string

const (
	SelectionReasonGap         SelectionReason = "gap"
	SelectionReasonMaintenance SelectionReason = "maintenance"
	SelectionReasonStretch     SelectionReason = "stretch"
)

// SelectedQuestion exists only for the duration of a selection response.
type SelectedQuestion struct {
	Question        *Question       `json:"question"`
	SelectionReason SelectionReason `json:"selection_reason"`
	Difficulty      Difficulty      `json:"difficulty"`
}
