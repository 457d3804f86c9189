package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/internal/utils"
)

// ChoreHandler manages chore definition endpoints.
type ChoreHandler struct {
	service service.ChoreService
	logger  zerolog.Logger
}

// NewChoreHandler builds a chore handler instance.
func NewChoreHandler(service service.ChoreService, logger zerolog.Logger) *ChoreHandler {
	return &ChoreHandler{
		service: service,
		logger:  logger.With().Str("component", "chore_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ChoreHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
}

func (h *ChoreHandler) list(c *fiber.Ctx) error {
	filter := dto.ChoreFilter{}
	if assigneeID, err := parseQueryUint(c, "assignee_id"); err == nil && assigneeID != nil {
		filter.AssigneeID = assigneeID
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = &category
	}
	filter.ActiveOnly = c.QueryBool("active_only")

	chores, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chores retrieved", chores)
}

func (h *ChoreHandler) create(c *fiber.Ctx) error {
	var payload dto.ChoreCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chore, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "chore created", chore)
}

func (h *ChoreHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	chore, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chore retrieved", chore)
}

func (h *ChoreHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChoreUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chore, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chore updated", chore)
}

func (h *ChoreHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrChoreNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "chore not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
