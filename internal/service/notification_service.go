package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/observability"
	"github.com/choreboardhq/choreboard-api/internal/repository"
)

// Notifier is the fire-and-forget sink the review pipeline reports into.
// Failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, memberID uint, notificationType, message string)
}

// NotificationService persists notifications and fans them out to delivery
// workers over redis and NATS.
type NotificationService interface {
	Notifier
	List(ctx context.Context, memberID uint, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, memberID uint) (dto.NotificationResponse, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	sanitizer   *bluemonday.Policy
	nodeID      string
}

type notificationEvent struct {
	Source       string                   `json:"source"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationService constructs a notification service. The redis client
// and NATS connection are both optional.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) NotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		sanitizer:   bluemonday.StrictPolicy(),
		nodeID:      uuid.NewString(),
	}
}

// Notify persists and publishes one notification. Errors are swallowed after
// logging so pipeline side effects never block on delivery.
func (s *notificationService) Notify(ctx context.Context, memberID uint, notificationType, message string) {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(message))
	if memberID == 0 || clean == "" {
		return
	}

	model := models.Notification{
		MemberID: memberID,
		Type:     notificationType,
		Message:  clean,
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Warn().Err(err).Uint("member_id", memberID).Msg("failed to persist notification")
		return
	}

	response := dto.NewNotificationResponse(model)
	if err := s.publish(ctx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification to broker")
	}

	observability.NotificationsPublished(notificationType)
}

func (s *notificationService) List(ctx context.Context, memberID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByMember(ctx, memberID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, memberID uint) (dto.NotificationResponse, error) {
	notification, err := s.repo.MarkRead(ctx, id, memberID)
	if err != nil {
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) publish(ctx context.Context, notification dto.NotificationResponse) error {
	if (s.redis == nil || s.redisStream == "") && (s.nats == nil || s.natsSubject == "") {
		return nil
	}

	event := notificationEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}
