package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/observability"
	"github.com/choreboardhq/choreboard-api/internal/repository"
)

// ErrRewardExists indicates a proof was already rewarded. Surfaces when the
// ledger's per-proof uniqueness catches a duplicate award.
var ErrRewardExists = errors.New("reward already issued for this proof")

const defaultBalanceCacheTTL = 5 * time.Minute

// RewardService maintains the append-only reward ledger and the cached
// per-member balance.
type RewardService interface {
	Award(ctx context.Context, memberID, proofID uint, points float64, note string) (dto.RewardEntryResponse, error)
	Balance(ctx context.Context, memberID uint) (dto.BalanceResponse, error)
	Ledger(ctx context.Context, memberID uint, limit, offset int) ([]dto.RewardEntryResponse, error)
}

type rewardService struct {
	repo     repository.RewardRepository
	redis    *redis.Client
	cacheTTL time.Duration
	keyBase  string
	logger   zerolog.Logger
}

// NewRewardService constructs the ledger service. redisClient may be nil;
// balances are then always read from the database.
func NewRewardService(repo repository.RewardRepository, redisClient *redis.Client, keyBase string, cacheTTL time.Duration, logger zerolog.Logger) RewardService {
	if cacheTTL <= 0 {
		cacheTTL = defaultBalanceCacheTTL
	}
	if keyBase == "" {
		keyBase = "choreboard"
	}

	return &rewardService{
		repo:     repo,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		keyBase:  keyBase,
		logger:   logger.With().Str("component", "reward_service").Logger(),
	}
}

func (s *rewardService) Award(ctx context.Context, memberID, proofID uint, points float64, note string) (dto.RewardEntryResponse, error) {
	entry := models.RewardEntry{
		MemberID: memberID,
		ProofID:  proofID,
		Points:   points,
		Note:     note,
	}

	if err := s.repo.Append(ctx, &entry); err != nil {
		if isUniqueViolation(err) {
			return dto.RewardEntryResponse{}, ErrRewardExists
		}
		return dto.RewardEntryResponse{}, err
	}

	observability.RewardsIssued(points)
	s.invalidateBalance(ctx, memberID)

	return dto.NewRewardEntryResponse(entry), nil
}

func (s *rewardService) Balance(ctx context.Context, memberID uint) (dto.BalanceResponse, error) {
	if cached, ok := s.cachedBalance(ctx, memberID); ok {
		return dto.BalanceResponse{MemberID: memberID, Balance: cached}, nil
	}

	balance, err := s.repo.Balance(ctx, memberID)
	if err != nil {
		return dto.BalanceResponse{}, err
	}

	s.cacheBalance(ctx, memberID, balance)

	return dto.BalanceResponse{MemberID: memberID, Balance: balance}, nil
}

func (s *rewardService) Ledger(ctx context.Context, memberID uint, limit, offset int) ([]dto.RewardEntryResponse, error) {
	entries, err := s.repo.ListByMember(ctx, memberID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewRewardEntryResponseSlice(entries), nil
}

func (s *rewardService) balanceKey(memberID uint) string {
	return fmt.Sprintf("%s:balance:%d", s.keyBase, memberID)
}

func (s *rewardService) cachedBalance(ctx context.Context, memberID uint) (float64, bool) {
	if s.redis == nil {
		return 0, false
	}

	raw, err := s.redis.Get(ctx, s.balanceKey(memberID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("balance cache read failed")
		}
		return 0, false
	}

	balance, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return balance, true
}

func (s *rewardService) cacheBalance(ctx context.Context, memberID uint, balance float64) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Set(ctx, s.balanceKey(memberID), strconv.FormatFloat(balance, 'f', -1, 64), s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("balance cache write failed")
	}
}

func (s *rewardService) invalidateBalance(ctx context.Context, memberID uint) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, s.balanceKey(memberID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("balance cache invalidation failed")
	}
}

// isUniqueViolation matches the portable subset of duplicate-key errors gorm
// surfaces across postgres and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
