package dto

// Review decisions accepted from reviewers.
const (
	ReviewDecisionApprove = "approve"
	ReviewDecisionReject  = "reject"
)

// ReviewRequest is the reviewer's verdict on a proof awaiting human review.
// RewardOverride is honoured on approval only.
type ReviewRequest struct {
	Decision       string   `json:"decision" validate:"required,oneof=approve reject"`
	Feedback       string   `json:"feedback" validate:"omitempty,max=2000"`
	RewardOverride *float64 `json:"reward_override" validate:"omitempty,gte=0"`
}

// ReviewResponse confirms the applied decision.
type ReviewResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Proof   ProofResponse        `json:"proof"`
	Reward  *RewardEntryResponse `json:"reward,omitempty"`
}
