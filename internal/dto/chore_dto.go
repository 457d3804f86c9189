package dto

import (
	"time"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// ChoreCreateRequest describes a new chore definition.
type ChoreCreateRequest struct {
	Title        string   `json:"title" validate:"required,min=3,max=255"`
	Description  string   `json:"description" validate:"omitempty,max=2000"`
	Category     string   `json:"category" validate:"omitempty,oneof=chore room daily"`
	Room         string   `json:"room" validate:"omitempty,max=128"`
	Checklist    []string `json:"checklist" validate:"omitempty,dive,min=1,max=256"`
	RewardPoints float64  `json:"reward_points" validate:"gte=0"`
	DueWeekday   *int     `json:"due_weekday" validate:"omitempty,gte=0,lte=6"`
}

// ChoreUpdateRequest updates or reassigns a chore.
type ChoreUpdateRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	Checklist    []string `json:"checklist" validate:"omitempty,dive,min=1,max=256"`
	AssigneeID   *uint    `json:"assignee_id"`
	RewardPoints *float64 `json:"reward_points" validate:"omitempty,gte=0"`
	DueWeekday   *int     `json:"due_weekday" validate:"omitempty,gte=0,lte=6"`
	Active       *bool    `json:"active"`
}

// ChoreFilter describes query string filters for listing chores.
type ChoreFilter struct {
	AssigneeID *uint   `query:"assignee_id"`
	Category   *string `query:"category" validate:"omitempty,oneof=chore room daily"`
	ActiveOnly bool    `query:"active_only"`
}

// ChoreResponse is returned to API clients when viewing chores.
type ChoreResponse struct {
	ID           uint        `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Category     string      `json:"category"`
	Room         string      `json:"room"`
	Checklist    []string    `json:"checklist"`
	AssigneeID   *uint       `json:"assignee_id"`
	RewardPoints float64     `json:"reward_points"`
	DueWeekday   *int        `json:"due_weekday"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Assignee     *MemberLite `json:"assignee,omitempty"`
}

// NewChoreResponse converts a Chore model into a DTO.
func NewChoreResponse(model models.Chore) ChoreResponse {
	response := ChoreResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Category:     model.Category,
		Room:         model.Room,
		Checklist:    model.Checklist,
		AssigneeID:   model.AssigneeID,
		RewardPoints: model.RewardPoints,
		DueWeekday:   model.DueWeekday,
		Active:       model.Active,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignee != nil {
		response.Assignee = &MemberLite{
			ID:   model.Assignee.ID,
			Name: model.Assignee.Name,
			Role: model.Assignee.Role,
		}
	}

	return response
}

// NewChoreResponseSlice converts a slice of chores.
func NewChoreResponseSlice(chores []models.Chore) []ChoreResponse {
	responses := make([]ChoreResponse, 0, len(chores))
	for _, chore := range chores {
		responses = append(responses, NewChoreResponse(chore))
	}
	return responses
}
