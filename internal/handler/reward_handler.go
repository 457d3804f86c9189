package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/internal/utils"
)

// RewardHandler exposes the reward ledger and balances.
type RewardHandler struct {
	service service.RewardService
	logger  zerolog.Logger
}

// NewRewardHandler builds a reward handler instance.
func NewRewardHandler(service service.RewardService, logger zerolog.Logger) *RewardHandler {
	return &RewardHandler{
		service: service,
		logger:  logger.With().Str("component", "reward_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RewardHandler) Register(router fiber.Router) {
	router.Get("/members/:id/balance", h.balance)
	router.Get("/members/:id/ledger", h.ledger)
}

func (h *RewardHandler) balance(c *fiber.Ctx) error {
	memberID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	balance, err := h.service.Balance(c.Context(), memberID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to read balance")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "balance retrieved", balance)
}

func (h *RewardHandler) ledger(c *fiber.Ctx) error {
	memberID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit := parseQueryInt(c, "limit", 20)
	offset := parseQueryInt(c, "offset", 0)

	entries, err := h.service.Ledger(c.Context(), memberID, limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to read ledger")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "ledger retrieved", entries)
}
