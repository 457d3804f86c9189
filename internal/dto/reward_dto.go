package dto

import (
	"time"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// RewardEntryResponse serializes one ledger line.
type RewardEntryResponse struct {
	ID        uint      `json:"id"`
	MemberID  uint      `json:"member_id"`
	ProofID   uint      `json:"proof_id"`
	Points    float64   `json:"points"`
	Balance   float64   `json:"balance"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// BalanceResponse reports a member's cumulative reward balance.
type BalanceResponse struct {
	MemberID uint    `json:"member_id"`
	Balance  float64 `json:"balance"`
}

// NewRewardEntryResponse converts a ledger entry into a DTO.
func NewRewardEntryResponse(model models.RewardEntry) RewardEntryResponse {
	return RewardEntryResponse{
		ID:        model.ID,
		MemberID:  model.MemberID,
		ProofID:   model.ProofID,
		Points:    model.Points,
		Balance:   model.Balance,
		Note:      model.Note,
		CreatedAt: model.CreatedAt,
	}
}

// NewRewardEntryResponseSlice converts a slice of ledger entries.
func NewRewardEntryResponseSlice(entries []models.RewardEntry) []RewardEntryResponse {
	responses := make([]RewardEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewRewardEntryResponse(entry))
	}
	return responses
}
