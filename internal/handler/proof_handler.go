package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/internal/utils"
)

// ProofHandler manages proof submission endpoints.
type ProofHandler struct {
	service service.ProofService
	logger  zerolog.Logger
}

// NewProofHandler builds a proof handler instance.
func NewProofHandler(service service.ProofService, logger zerolog.Logger) *ProofHandler {
	return &ProofHandler{
		service: service,
		logger:  logger.With().Str("component", "proof_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProofHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/resubmit", h.resubmit)
	router.Post("/:id/escalate", h.escalate)
}

func (h *ProofHandler) list(c *fiber.Ctx) error {
	filter := dto.ProofFilter{}
	if memberID, err := parseQueryUint(c, "member_id"); err == nil && memberID != nil {
		filter.MemberID = memberID
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = &status
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = &category
	}

	proofs, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "proofs retrieved", proofs)
}

func (h *ProofHandler) create(c *fiber.Ctx) error {
	payload := dto.ProofCreateRequest{
		Category:   c.FormValue("category"),
		Identifier: c.FormValue("identifier"),
		Notes:      c.FormValue("notes"),
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "photo is required")
	}

	proof, err := h.service.Submit(c.Context(), memberIDFromContext(c), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "proof submitted", proof)
}

func (h *ProofHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	proof, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "proof retrieved", proof)
}

func (h *ProofHandler) resubmit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.ProofResubmitRequest{
		Note: c.FormValue("note"),
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "photo is required")
	}

	proof, err := h.service.Resubmit(c.Context(), id, memberIDFromContext(c), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "proof resubmitted", proof)
}

func (h *ProofHandler) escalate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	proof, err := h.service.Escalate(c.Context(), id, memberIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "proof escalated to human review", proof)
}

func (h *ProofHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProofNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "proof not found")
	case errors.Is(err, service.ErrNotProofOwner):
		return utils.SendError(c, fiber.StatusForbidden, "proof belongs to another member")
	case errors.Is(err, service.ErrProofConflict):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidImage), errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrNoteTooShort), errors.Is(err, models.ErrInvalidTaskRef):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
