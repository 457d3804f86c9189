package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/repository"
)

// ErrRuleNotFound indicates no evaluation rule exists for the task. The
// intake path treats this as "automated review unavailable" and routes the
// proof straight to human review.
var ErrRuleNotFound = errors.New("evaluation rule not found")

// RuleResolver locates the evaluation rule for a task reference. Pure
// lookup; no side effects.
type RuleResolver interface {
	Resolve(ctx context.Context, ref models.TaskRef) (models.EvaluationRule, error)
}

type ruleResolver struct {
	repo   repository.RuleRepository
	logger zerolog.Logger
}

// NewRuleResolver constructs the rule resolver.
func NewRuleResolver(repo repository.RuleRepository, logger zerolog.Logger) RuleResolver {
	return &ruleResolver{
		repo:   repo,
		logger: logger.With().Str("component", "rule_resolver").Logger(),
	}
}

// Resolve dispatches on the task category tag. All three categories share
// the (category, identifier) key; for daily routines the identifier is the
// routine type itself.
func (s *ruleResolver) Resolve(ctx context.Context, ref models.TaskRef) (models.EvaluationRule, error) {
	rule, err := s.repo.GetByTask(ctx, string(ref.Category), ref.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug().Str("task", ref.String()).Msg("no evaluation rule for task")
			return models.EvaluationRule{}, ErrRuleNotFound
		}
		return models.EvaluationRule{}, err
	}

	return rule, nil
}
