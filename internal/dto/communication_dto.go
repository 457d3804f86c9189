package dto

import (
	"time"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// MessageCreateRequest posts one entry to the family message board.
type MessageCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// MessageResponse serializes a message board entry.
type MessageResponse struct {
	ID        uint       `json:"id"`
	SenderID  uint       `json:"sender_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Sender    MemberLite `json:"sender"`
}

// NewMessageResponse converts a Message model into a DTO.
func NewMessageResponse(model models.Message) MessageResponse {
	return MessageResponse{
		ID:        model.ID,
		SenderID:  model.SenderID,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
		Sender: MemberLite{
			ID:   model.Sender.ID,
			Name: model.Sender.Name,
			Role: model.Sender.Role,
		},
	}
}

// NewMessageResponseSlice converts a slice of messages.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewMessageResponse(message))
	}
	return responses
}

// NotificationResponse serializes a member notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	MemberID  uint      `json:"member_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a Notification model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		MemberID:  model.MemberID,
		Type:      model.Type,
		Message:   model.Message,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of notifications.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}
	return responses
}
