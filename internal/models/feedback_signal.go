package models

import (
	"time"

	"gorm.io/datatypes"
)

// Feedback signal classifications comparing the automated verdict A with the
// human verdict H.
const (
	SignalAgreement     = "agreement"
	SignalFalsePositive = "false_positive"
	SignalFalseNegative = "false_negative"
)

// ClassifySignal maps an (automated, human) verdict pair to its
// classification. Approve counts as true.
func ClassifySignal(autoPassed, humanApproved bool) string {
	switch {
	case autoPassed == humanApproved:
		return SignalAgreement
	case autoPassed:
		return SignalFalsePositive
	default:
		return SignalFalseNegative
	}
}

// FeedbackSignal records one automated-vs-human verdict comparison. Signals
// are append-only and feed exemplar retrieval for future evaluations. One is
// written per proof that reaches a terminal human decision after having
// received an automated verdict; escalated proofs are exempt.
type FeedbackSignal struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	ProofID        uint              `gorm:"not null;uniqueIndex" json:"proof_id"`
	Category       string            `gorm:"size:16;not null;index:idx_signals_task" json:"category"`
	TaskIdentifier string            `gorm:"size:128;not null;index:idx_signals_task" json:"task_identifier"`
	AutoPassed     bool              `gorm:"not null" json:"auto_passed"`
	AutoConfidence float64           `gorm:"not null" json:"auto_confidence"`
	AutoFeedback   string            `gorm:"type:text" json:"auto_feedback"`
	HumanApproved  bool              `gorm:"not null" json:"human_approved"`
	HumanFeedback  string            `gorm:"type:text" json:"human_feedback"`
	SubmitterNotes string            `gorm:"type:text" json:"submitter_notes"`
	Classification string            `gorm:"size:16;not null;index" json:"classification"`
	RuleSnapshot   datatypes.JSONMap `gorm:"type:json" json:"rule_snapshot"`
	CreatedAt      time.Time         `json:"created_at"`
}

// IsDisagreement reports whether automation and reviewer differed.
func (s FeedbackSignal) IsDisagreement() bool {
	return s.Classification != SignalAgreement
}
