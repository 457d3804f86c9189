package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// RewardRepository manages the append-only reward ledger.
type RewardRepository interface {
	Append(ctx context.Context, entry *models.RewardEntry) error
	Balance(ctx context.Context, memberID uint) (float64, error)
	ListByMember(ctx context.Context, memberID uint, limit, offset int) ([]models.RewardEntry, error)
}

type rewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository constructs the reward ledger repository.
func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

// Append writes one ledger entry, chaining the balance off the member's
// latest entry inside a transaction. The unique index on proof_id rejects a
// second award for the same proof.
func (r *rewardRepository) Append(ctx context.Context, entry *models.RewardEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last models.RewardEntry
		err := tx.Where("member_id = ?", entry.MemberID).
			Order("id DESC").
			First(&last).Error
		switch {
		case err == nil:
			entry.Balance = last.Balance + entry.Points
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry.Balance = entry.Points
		default:
			return err
		}

		return tx.Create(entry).Error
	})
}

func (r *rewardRepository) Balance(ctx context.Context, memberID uint) (float64, error) {
	var last models.RewardEntry
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("id DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return last.Balance, nil
}

func (r *rewardRepository) ListByMember(ctx context.Context, memberID uint, limit, offset int) ([]models.RewardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entries []models.RewardEntry
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
