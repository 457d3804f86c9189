package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/observability"
	"github.com/choreboardhq/choreboard-api/internal/repository"
)

var (
	// ErrAlreadyReviewed indicates the proof is not awaiting human review.
	ErrAlreadyReviewed = errors.New("proof already reviewed")

	// ErrNotReviewer indicates the acting member cannot review proofs.
	ErrNotReviewer = errors.New("only parents can review proofs")
)

// ReviewService applies a reviewer's decision to a proof awaiting human
// review: the terminal transition, the reward on approval and the feedback
// signal comparing the automated verdict with the human one.
type ReviewService interface {
	Decide(ctx context.Context, proofID uint, reviewer models.Member, req dto.ReviewRequest) (dto.ReviewResponse, error)
}

type reviewService struct {
	proofs        repository.ProofRepository
	rules         RuleResolver
	signals       repository.SignalRepository
	rewards       RewardService
	notifier      Notifier
	activity      ActivityRecorder
	validator     *validator.Validate
	defaultPoints float64
	logger        zerolog.Logger
}

// NewReviewService wires the human review flow. defaultPoints is awarded on
// approval when the rule carries no reward of its own.
func NewReviewService(
	proofs repository.ProofRepository,
	rules RuleResolver,
	signals repository.SignalRepository,
	rewards RewardService,
	notifier Notifier,
	activity ActivityRecorder,
	validate *validator.Validate,
	defaultPoints float64,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		proofs:        proofs,
		rules:         rules,
		signals:       signals,
		rewards:       rewards,
		notifier:      notifier,
		activity:      activity,
		validator:     validate,
		defaultPoints: defaultPoints,
		logger:        logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) Decide(ctx context.Context, proofID uint, reviewer models.Member, req dto.ReviewRequest) (dto.ReviewResponse, error) {
	if !reviewer.IsReviewer() {
		return dto.ReviewResponse{}, ErrNotReviewer
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.ReviewResponse{}, err
	}

	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrProofNotFound
		}
		return dto.ReviewResponse{}, err
	}

	if proof.Status != models.ProofStatusPendingHuman {
		return dto.ReviewResponse{}, ErrAlreadyReviewed
	}

	approved := req.Decision == dto.ReviewDecisionApprove

	decision := models.ReviewDecisionRejected
	next := models.ProofStatusRejected
	if approved {
		decision = models.ReviewDecisionApproved
		next = models.ProofStatusApproved
	}

	now := time.Now()
	proof.Status = next
	proof.ReviewDecision = &decision
	proof.ReviewerID = &reviewer.ID
	proof.ReviewedAt = &now
	if req.Feedback != "" {
		proof.ReviewerFeedback = &req.Feedback
	}

	// The guarded update is what serializes concurrent reviewers: exactly
	// one decision lands, the rest see a conflict.
	if err := s.proofs.UpdateFromStatus(ctx, &proof, models.ProofStatusPendingHuman); err != nil {
		if errors.Is(err, repository.ErrStaleProof) {
			return dto.ReviewResponse{}, ErrAlreadyReviewed
		}
		return dto.ReviewResponse{}, err
	}

	observability.ReviewDecisions(req.Decision)

	rule, ruleErr := s.rules.Resolve(ctx, proof.TaskRef())
	if ruleErr != nil && !errors.Is(ruleErr, ErrRuleNotFound) {
		s.logger.Warn().Err(ruleErr).Uint("proof_id", proof.ID).Msg("rule lookup failed during review")
	}

	response := dto.ReviewResponse{
		Status: proof.Status,
		Proof:  dto.NewProofResponse(proof),
	}

	if approved {
		points := rule.RewardPoints
		if points <= 0 {
			points = s.defaultPoints
		}
		if req.RewardOverride != nil {
			points = *req.RewardOverride
		}

		note := fmt.Sprintf("%s: %s", proof.Category, proof.TaskIdentifier)
		reward, err := s.rewards.Award(ctx, proof.MemberID, proof.ID, points, note)
		if err != nil && !errors.Is(err, ErrRewardExists) {
			s.logger.Error().Err(err).Uint("proof_id", proof.ID).Msg("reward issuance failed after approval")
			return dto.ReviewResponse{}, fmt.Errorf("proof approved but reward issuance failed: %w", err)
		}
		if err == nil {
			response.Reward = &reward
		}

		response.Message = fmt.Sprintf("Proof approved, %.0f points awarded", points)
		s.notifier.Notify(ctx, proof.MemberID, "proof_approved", response.Message)
	} else {
		response.Message = "Proof rejected"
		s.notifier.Notify(ctx, proof.MemberID, "proof_rejected", fallbackString(proof.ReviewerFeedback, "Your proof was not accepted."))
	}

	s.recordSignal(ctx, proof, rule, approved)

	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    reviewer.ID,
		ActorRole:  reviewer.Role,
		Action:     "proof.reviewed",
		EntityType: "proof",
		EntityID:   &proof.ID,
		Metadata: map[string]interface{}{
			"decision": req.Decision,
		},
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record review activity")
	}

	return response, nil
}

// recordSignal persists the automated-vs-human comparison. Escalated proofs
// are exempt even when they still carry automated fields from an earlier
// attempt. Signal failures are logged, never surfaced: the review already
// landed.
func (s *reviewService) recordSignal(ctx context.Context, proof models.Proof, rule models.EvaluationRule, humanApproved bool) {
	if !proof.HasAutoVerdict() || proof.Escalated {
		return
	}

	signal := models.FeedbackSignal{
		ProofID:        proof.ID,
		Category:       proof.Category,
		TaskIdentifier: proof.TaskIdentifier,
		AutoPassed:     *proof.AutoPassed,
		HumanApproved:  humanApproved,
		SubmitterNotes: proof.Notes,
		Classification: models.ClassifySignal(*proof.AutoPassed, humanApproved),
		RuleSnapshot:   rule.Snapshot(),
	}
	if proof.AutoConfidence != nil {
		signal.AutoConfidence = *proof.AutoConfidence
	}
	if proof.AutoFeedback != nil {
		signal.AutoFeedback = *proof.AutoFeedback
	}
	if proof.ReviewerFeedback != nil {
		signal.HumanFeedback = *proof.ReviewerFeedback
	}

	if err := s.signals.Create(ctx, &signal); err != nil {
		s.logger.Warn().Err(err).Uint("proof_id", proof.ID).Msg("failed to record feedback signal")
		return
	}

	observability.FeedbackSignals(signal.Classification)
}

func fallbackString(value *string, fallback string) string {
	if value != nil && *value != "" {
		return *value
	}
	return fallback
}
