package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// SignalRepository persists feedback signals, the append-only record of
// automated-vs-human verdict comparisons.
type SignalRepository interface {
	Create(ctx context.Context, signal *models.FeedbackSignal) error
	ListDisagreements(ctx context.Context, category, identifier string, limit int) ([]models.FeedbackSignal, error)
}

type signalRepository struct {
	db *gorm.DB
}

// NewSignalRepository constructs the feedback signal repository.
func NewSignalRepository(db *gorm.DB) SignalRepository {
	return &signalRepository{db: db}
}

func (r *signalRepository) Create(ctx context.Context, signal *models.FeedbackSignal) error {
	return r.db.WithContext(ctx).Create(signal).Error
}

// ListDisagreements returns recent signals where automation and reviewer
// disagreed, most recent first. An empty identifier matches the whole
// category.
func (r *signalRepository) ListDisagreements(ctx context.Context, category, identifier string, limit int) ([]models.FeedbackSignal, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	query := r.db.WithContext(ctx).
		Where("category = ?", category).
		Where("classification <> ?", models.SignalAgreement)

	if identifier != "" {
		query = query.Where("task_identifier = ?", identifier)
	}

	var signals []models.FeedbackSignal
	if err := query.Order("created_at DESC").Limit(limit).Find(&signals).Error; err != nil {
		return nil, err
	}

	return signals, nil
}
