package dto

import (
	"time"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// ProofCreateRequest describes the multipart payload for proof intake.
type ProofCreateRequest struct {
	Category   string `form:"category" validate:"required"`
	Identifier string `form:"identifier" validate:"required"`
	Notes      string `form:"notes" validate:"omitempty,max=2000"`
}

// ProofResubmitRequest describes a replacement photo against an existing
// proof. The note explains what changed; its minimum length comes from
// configuration and is enforced by the service.
type ProofResubmitRequest struct {
	Note string `form:"note" validate:"required,max=2000"`
}

// ProofFilter describes query string filters for listing proofs.
type ProofFilter struct {
	MemberID *uint   `query:"member_id"`
	Status   *string `query:"status" validate:"omitempty,oneof=uploaded reviewing_automated needs_revision pending_human approved rejected"`
	Category *string `query:"category" validate:"omitempty,oneof=chore room daily"`
}

// ChecklistItemResponse serializes one automated checklist verdict.
type ChecklistItemResponse struct {
	Item   string `json:"item"`
	Passed bool   `json:"passed"`
	Note   string `json:"note,omitempty"`
}

// MemberLite summarizes a member without full profile data.
type MemberLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ProofResponse is returned to API clients when viewing proofs.
type ProofResponse struct {
	ID             uint                    `json:"id"`
	Category       string                  `json:"category"`
	TaskIdentifier string                  `json:"task_identifier"`
	MemberID       uint                    `json:"member_id"`
	ImageURL       string                  `json:"image_url"`
	Notes          string                  `json:"notes"`
	Status         string                  `json:"status"`
	Attempt        int                     `json:"attempt"`
	Escalated      bool                    `json:"escalated"`
	AutoPassed     *bool                   `json:"auto_passed"`
	AutoFeedback   *string                 `json:"auto_feedback"`
	AutoConfidence *float64                `json:"auto_confidence"`
	AutoChecklist  []ChecklistItemResponse `json:"auto_checklist,omitempty"`
	EvaluatedAt    *time.Time              `json:"evaluated_at"`
	ReviewDecision *string                 `json:"review_decision"`
	ReviewerID     *uint                   `json:"reviewer_id"`
	ReviewerNote   *string                 `json:"reviewer_note"`
	ReviewedAt     *time.Time              `json:"reviewed_at"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
	Member         MemberLite              `json:"member"`
}

// NewProofResponse converts a Proof model into a DTO.
func NewProofResponse(model models.Proof) ProofResponse {
	response := ProofResponse{
		ID:             model.ID,
		Category:       model.Category,
		TaskIdentifier: model.TaskIdentifier,
		MemberID:       model.MemberID,
		ImageURL:       model.ImageURL,
		Notes:          model.Notes,
		Status:         model.Status,
		Attempt:        model.Attempt,
		Escalated:      model.Escalated,
		AutoPassed:     model.AutoPassed,
		AutoFeedback:   model.AutoFeedback,
		AutoConfidence: model.AutoConfidence,
		EvaluatedAt:    model.EvaluatedAt,
		ReviewDecision: model.ReviewDecision,
		ReviewerID:     model.ReviewerID,
		ReviewerNote:   model.ReviewerFeedback,
		ReviewedAt:     model.ReviewedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
		Member: MemberLite{
			ID:   model.Member.ID,
			Name: model.Member.Name,
			Role: model.Member.Role,
		},
	}

	for _, item := range model.AutoChecklist {
		response.AutoChecklist = append(response.AutoChecklist, ChecklistItemResponse{
			Item:   item.Item,
			Passed: item.Passed,
			Note:   item.Note,
		})
	}

	return response
}

// NewProofResponseSlice converts a slice of proofs.
func NewProofResponseSlice(proofs []models.Proof) []ProofResponse {
	responses := make([]ProofResponse, 0, len(proofs))
	for _, proof := range proofs {
		responses = append(responses, NewProofResponse(proof))
	}
	return responses
}
