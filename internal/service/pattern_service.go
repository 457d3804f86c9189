package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/repository"
	"github.com/choreboardhq/choreboard-api/pkg/ai"
)

const defaultExemplarLimit = 5

// PatternRetriever turns stored automated-vs-human disagreements into
// few-shot exemplars for future evaluations. Retrieval never blocks an
// evaluation: any failure degrades to empty exemplars.
type PatternRetriever interface {
	Exemplars(ctx context.Context, category, identifier string) ai.Exemplars
}

type patternRetriever struct {
	signals repository.SignalRepository
	limit   int
	logger  zerolog.Logger
}

// NewPatternRetriever constructs the exemplar retriever.
func NewPatternRetriever(signals repository.SignalRepository, limit int, logger zerolog.Logger) PatternRetriever {
	if limit <= 0 {
		limit = defaultExemplarLimit
	}

	return &patternRetriever{
		signals: signals,
		limit:   limit,
		logger:  logger.With().Str("component", "pattern_retriever").Logger(),
	}
}

func (s *patternRetriever) Exemplars(ctx context.Context, category, identifier string) ai.Exemplars {
	disagreements, err := s.signals.ListDisagreements(ctx, category, identifier, s.limit)
	if err != nil {
		s.logger.Warn().Err(err).Str("category", category).Msg("exemplar retrieval failed, continuing without")
		return ai.Exemplars{}
	}

	if len(disagreements) == 0 {
		return ai.Exemplars{}
	}

	exemplars := ai.Exemplars{}
	var lenient, strict bool
	for _, signal := range disagreements {
		switch signal.Classification {
		case models.SignalFalsePositive:
			lenient = true
		case models.SignalFalseNegative:
			strict = true
		}

		exemplars.Examples = append(exemplars.Examples, ai.ExemplarPair{
			AutoPassed:     signal.AutoPassed,
			AutoFeedback:   signal.AutoFeedback,
			HumanApproved:  signal.HumanApproved,
			HumanFeedback:  signal.HumanFeedback,
			SubmitterNotes: signal.SubmitterNotes,
		})
	}

	if lenient {
		exemplars.Guidance = append(exemplars.Guidance,
			"Earlier automated verdicts for this task were too lenient. Do not mark the task complete unless every requirement is clearly visible in the photo.")
	}
	if strict {
		exemplars.Guidance = append(exemplars.Guidance,
			"Earlier automated verdicts for this task were too strict. Do not fail a photo over details the requirements do not ask for.")
	}

	return exemplars
}
