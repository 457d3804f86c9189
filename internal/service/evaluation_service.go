package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/observability"
	"github.com/choreboardhq/choreboard-api/pkg/ai"
)

const defaultEvaluationTimeout = 30 * time.Second

// ProofEvaluator runs the automated vision review for a proof photo. It
// never returns an error: model failures, timeouts and malformed responses
// all collapse into the safe fallback verdict so the pipeline keeps moving.
type ProofEvaluator interface {
	Evaluate(ctx context.Context, proof *models.Proof, rule models.EvaluationRule, exemplars ai.Exemplars) ai.VisionResult
}

type proofEvaluator struct {
	vision  ai.Evaluator
	timeout time.Duration
	logger  zerolog.Logger
}

// NewProofEvaluator wraps a vision evaluator with a per-call deadline and
// fallback absorption.
func NewProofEvaluator(vision ai.Evaluator, timeout time.Duration, logger zerolog.Logger) ProofEvaluator {
	if timeout <= 0 {
		timeout = defaultEvaluationTimeout
	}

	return &proofEvaluator{
		vision:  vision,
		timeout: timeout,
		logger:  logger.With().Str("component", "proof_evaluator").Logger(),
	}
}

func (s *proofEvaluator) Evaluate(ctx context.Context, proof *models.Proof, rule models.EvaluationRule, exemplars ai.Exemplars) ai.VisionResult {
	input := ai.VisionInput{
		ImageURL:       proof.ImageURL,
		Category:       proof.Category,
		TaskIdentifier: proof.TaskIdentifier,
		Notes:          proof.Notes,
		Rule: ai.RuleContext{
			Scope:     rule.Scope,
			Criteria:  rule.Criteria,
			Checklist: rule.Checklist,
		},
		Exemplars: exemplars,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.vision.Evaluate(callCtx, input)
	if err != nil {
		observability.EvaluationFallbacks(proof.Category)
		s.logger.Warn().Err(err).
			Uint("proof_id", proof.ID).
			Str("category", proof.Category).
			Str("task", proof.TaskIdentifier).
			Msg("automated review failed, using fallback verdict")
		return ai.FallbackResult()
	}

	return result
}
