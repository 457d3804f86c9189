package models

import "time"

// RewardEntry is one append-only ledger line for a granted reward. Balance is
// the member's cumulative total after the entry; the unique index on ProofID
// guarantees at most one award per proof.
type RewardEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"not null;index" json:"member_id"`
	ProofID   uint      `gorm:"not null;uniqueIndex" json:"proof_id"`
	Points    float64   `gorm:"not null" json:"points"`
	Balance   float64   `gorm:"not null" json:"balance"`
	Note      string    `gorm:"size:256" json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
