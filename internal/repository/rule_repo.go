package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// RuleRepository reads evaluation rules. Rules are owned by configuration
// collaborators; the pipeline never writes them.
type RuleRepository interface {
	GetByTask(ctx context.Context, category, identifier string) (models.EvaluationRule, error)
	Create(ctx context.Context, rule *models.EvaluationRule) error
}

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository constructs the rule repository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) GetByTask(ctx context.Context, category, identifier string) (models.EvaluationRule, error) {
	var rule models.EvaluationRule
	if err := r.db.WithContext(ctx).
		Where("category = ? AND task_identifier = ?", category, identifier).
		First(&rule).Error; err != nil {
		return models.EvaluationRule{}, err
	}

	return rule, nil
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.EvaluationRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}
