package dto

import (
	"time"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// MemberCreateRequest registers a household member.
type MemberCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=128"`
	Role      string `json:"role" validate:"required,oneof=parent kid"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=512"`
}

// MemberResponse serializes a household member.
type MemberResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMemberResponse converts a Member model into a DTO.
func NewMemberResponse(model models.Member) MemberResponse {
	return MemberResponse{
		ID:        model.ID,
		Name:      model.Name,
		Role:      model.Role,
		AvatarURL: model.AvatarURL,
		CreatedAt: model.CreatedAt,
	}
}

// NewMemberResponseSlice converts a slice of members.
func NewMemberResponseSlice(members []models.Member) []MemberResponse {
	responses := make([]MemberResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, NewMemberResponse(member))
	}
	return responses
}
