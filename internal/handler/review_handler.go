package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/internal/utils"
)

// ReviewHandler applies human review decisions to proofs.
type ReviewHandler struct {
	reviews service.ReviewService
	members service.MemberService
	logger  zerolog.Logger
}

// NewReviewHandler builds a review handler instance.
func NewReviewHandler(reviews service.ReviewService, members service.MemberService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		members: members,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Post("/:id/review", h.decide)
}

func (h *ReviewHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reviewer, err := h.members.GetModel(c.Context(), memberIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	result, err := h.reviews.Decide(c.Context(), id, reviewer, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, result.Message, result)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProofNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "proof not found")
	case errors.Is(err, service.ErrMemberNotFound):
		return utils.SendError(c, fiber.StatusUnauthorized, "reviewer not recognised")
	case errors.Is(err, service.ErrNotReviewer):
		return utils.SendError(c, fiber.StatusForbidden, "only parents can review proofs")
	case errors.Is(err, service.ErrAlreadyReviewed):
		return utils.SendError(c, fiber.StatusConflict, "proof already reviewed")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
