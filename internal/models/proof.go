package models

import (
	"time"

	"gorm.io/datatypes"
)

// Proof statuses. A proof moves uploaded -> reviewing_automated ->
// {needs_revision, pending_human} -> {approved, rejected}, with a direct
// uploaded -> pending_human short circuit when automated review is
// unavailable or the submitter escalates.
const (
	ProofStatusUploaded           = "uploaded"
	ProofStatusReviewingAutomated = "reviewing_automated"
	ProofStatusNeedsRevision      = "needs_revision"
	ProofStatusPendingHuman       = "pending_human"
	ProofStatusApproved           = "approved"
	ProofStatusRejected           = "rejected"
)

// Review decisions recorded on a proof.
const (
	ReviewDecisionApproved = "approved"
	ReviewDecisionRejected = "rejected"
)

// ChecklistResult is one per-item verdict from the automated evaluation.
type ChecklistResult struct {
	Item   string `json:"item"`
	Passed bool   `json:"passed"`
	Note   string `json:"note,omitempty"`
}

// Proof is one photographic evidence record tied to a task attempt.
type Proof struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Category       string `gorm:"size:16;not null;index" json:"category"`
	TaskIdentifier string `gorm:"size:128;not null;index" json:"task_identifier"`
	MemberID       uint   `gorm:"not null;index" json:"member_id"`
	ImageRef       string `gorm:"size:256;not null" json:"-"`
	ImageURL       string `gorm:"size:512;not null" json:"image_url"`
	Notes          string `gorm:"type:text" json:"notes"`

	Status    string `gorm:"size:32;not null;index" json:"status"`
	Attempt   int    `gorm:"not null;default:1" json:"attempt"`
	Escalated bool   `gorm:"not null;default:false" json:"escalated"`

	// Automated review fields. Populated at most once per attempt; a new
	// attempt clears all of them together.
	AutoPassed     *bool                                  `json:"auto_passed"`
	AutoFeedback   *string                                `gorm:"type:text" json:"auto_feedback"`
	AutoConfidence *float64                               `json:"auto_confidence"`
	AutoChecklist  datatypes.JSONSlice[ChecklistResult]   `json:"auto_checklist"`
	EvaluatedAt    *time.Time                             `json:"evaluated_at"`

	// Human review fields. Populated at most once per proof lifetime.
	ReviewDecision   *string    `gorm:"size:16" json:"review_decision"`
	ReviewerID       *uint      `json:"reviewer_id"`
	ReviewerFeedback *string    `gorm:"type:text" json:"reviewer_feedback"`
	ReviewedAt       *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Member    Member    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"member"`
}

// TaskRef returns the tagged task reference this proof was submitted for.
func (p Proof) TaskRef() TaskRef {
	return TaskRef{Category: TaskCategory(p.Category), Identifier: p.TaskIdentifier}
}

// IsTerminal reports whether the proof has received a final human decision.
func (p Proof) IsTerminal() bool {
	return p.Status == ProofStatusApproved || p.Status == ProofStatusRejected
}

// HasAutoVerdict reports whether the automated review fields are populated.
func (p Proof) HasAutoVerdict() bool {
	return p.AutoPassed != nil
}

// ClearAutomated resets the automated review fields for a fresh attempt.
func (p *Proof) ClearAutomated() {
	p.AutoPassed = nil
	p.AutoFeedback = nil
	p.AutoConfidence = nil
	p.AutoChecklist = nil
	p.EvaluatedAt = nil
}

var proofTransitions = map[string][]string{
	ProofStatusUploaded:           {ProofStatusReviewingAutomated, ProofStatusPendingHuman},
	ProofStatusReviewingAutomated: {ProofStatusNeedsRevision, ProofStatusPendingHuman},
	ProofStatusNeedsRevision:      {ProofStatusUploaded, ProofStatusPendingHuman},
	ProofStatusPendingHuman:       {ProofStatusApproved, ProofStatusRejected},
}

// CanTransition reports whether the status change is allowed by the proof
// lifecycle. Escalating an already-escalated proof repeats pending_human,
// which is treated as a no-op by the caller rather than a transition.
func CanTransition(from, to string) bool {
	for _, allowed := range proofTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
