package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/repository"
)

// MessageService manages the family message board.
type MessageService interface {
	Post(ctx context.Context, senderID uint, req dto.MessageCreateRequest) (dto.MessageResponse, error)
	List(ctx context.Context, limit, offset int) ([]dto.MessageResponse, error)
}

type messageService struct {
	repo      repository.MessageRepository
	members   repository.MemberRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewMessageService constructs the message board service.
func NewMessageService(repo repository.MessageRepository, members repository.MemberRepository, validate *validator.Validate, logger zerolog.Logger) MessageService {
	return &messageService{
		repo:      repo,
		members:   members,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "message_service").Logger(),
	}
}

func (s *messageService) Post(ctx context.Context, senderID uint, req dto.MessageCreateRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MessageResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.MessageResponse{}, fmt.Errorf("message content is empty after sanitization")
	}

	message := models.Message{
		SenderID: senderID,
		Content:  content,
	}

	if err := s.repo.Create(ctx, &message); err != nil {
		return dto.MessageResponse{}, err
	}

	sender, err := s.members.GetByID(ctx, senderID)
	if err == nil {
		message.Sender = sender
	}

	return dto.NewMessageResponse(message), nil
}

func (s *messageService) List(ctx context.Context, limit, offset int) ([]dto.MessageResponse, error) {
	messages, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewMessageResponseSlice(messages), nil
}
