package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/internal/utils"
)

// MessageHandler manages the family message board endpoints.
type MessageHandler struct {
	service service.MessageService
	logger  zerolog.Logger
}

// NewMessageHandler builds a message handler instance.
func NewMessageHandler(service service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.post)
}

func (h *MessageHandler) list(c *fiber.Ctx) error {
	limit := parseQueryInt(c, "limit", 50)
	offset := parseQueryInt(c, "offset", 0)

	messages, err := h.service.List(c.Context(), limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list messages")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "messages retrieved", messages)
}

func (h *MessageHandler) post(c *fiber.Ctx) error {
	var payload dto.MessageCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.Post(c.Context(), memberIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to post message")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message posted", message)
}
