package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/observability"
	"github.com/choreboardhq/choreboard-api/internal/repository"
	"github.com/choreboardhq/choreboard-api/pkg/cloudinary"
)

var (
	// ErrProofNotFound indicates the proof does not exist.
	ErrProofNotFound = errors.New("proof not found")

	// ErrNotProofOwner indicates a member tried to act on someone else's proof.
	ErrNotProofOwner = errors.New("proof belongs to another member")

	// ErrProofConflict indicates the proof is not in a state that allows the
	// requested action, or the state changed concurrently.
	ErrProofConflict = errors.New("proof is not in a state that allows this action")

	// ErrInvalidImage indicates the uploaded file is not an accepted image format.
	ErrInvalidImage = errors.New("uploaded file must be a jpeg, png or webp image")

	// ErrImageTooLarge indicates the uploaded file exceeds the size ceiling.
	ErrImageTooLarge = errors.New("uploaded image exceeds the size limit")

	// ErrNoteTooShort indicates a resubmission note shorter than the
	// configured minimum.
	ErrNoteTooShort = errors.New("resubmission note is too short")
)

const (
	defaultImageMaxBytes = 10 << 20
	defaultNoteMinLength = 10
)

var acceptedImageMIMEs = []string{"image/jpeg", "image/png", "image/webp"}

// ImageStore persists proof photos and returns a client-safe URL. Satisfied
// by the Cloudinary service.
type ImageStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (cloudinary.Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// ProofService runs the proof intake pipeline: validation, photo storage,
// rule resolution, the automated vision review and the resulting state
// transitions, plus resubmission and escalation.
type ProofService interface {
	Submit(ctx context.Context, memberID uint, req dto.ProofCreateRequest, file *multipart.FileHeader) (dto.ProofResponse, error)
	Resubmit(ctx context.Context, proofID, memberID uint, req dto.ProofResubmitRequest, file *multipart.FileHeader) (dto.ProofResponse, error)
	Escalate(ctx context.Context, proofID, memberID uint) (dto.ProofResponse, error)
	GetByID(ctx context.Context, id uint) (dto.ProofResponse, error)
	List(ctx context.Context, filter dto.ProofFilter) ([]dto.ProofResponse, error)
}

type proofService struct {
	proofs        repository.ProofRepository
	members       repository.MemberRepository
	rules         RuleResolver
	patterns      PatternRetriever
	evaluator     ProofEvaluator
	images        ImageStore
	notifier      Notifier
	activity      ActivityRecorder
	validator     *validator.Validate
	imageMaxBytes int64
	noteMinLength int
	logger        zerolog.Logger
}

// NewProofService wires the intake pipeline. evaluator may be nil when no
// vision provider is configured; every proof then goes straight to human
// review.
func NewProofService(
	proofs repository.ProofRepository,
	members repository.MemberRepository,
	rules RuleResolver,
	patterns PatternRetriever,
	evaluator ProofEvaluator,
	images ImageStore,
	notifier Notifier,
	activity ActivityRecorder,
	validate *validator.Validate,
	imageMaxBytes int64,
	noteMinLength int,
	logger zerolog.Logger,
) ProofService {
	if imageMaxBytes <= 0 {
		imageMaxBytes = defaultImageMaxBytes
	}
	if noteMinLength <= 0 {
		noteMinLength = defaultNoteMinLength
	}

	return &proofService{
		proofs:        proofs,
		members:       members,
		rules:         rules,
		patterns:      patterns,
		evaluator:     evaluator,
		images:        images,
		notifier:      notifier,
		activity:      activity,
		validator:     validate,
		imageMaxBytes: imageMaxBytes,
		noteMinLength: noteMinLength,
		logger:        logger.With().Str("component", "proof_service").Logger(),
	}
}

func (s *proofService) Submit(ctx context.Context, memberID uint, req dto.ProofCreateRequest, file *multipart.FileHeader) (dto.ProofResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProofResponse{}, err
	}

	ref, err := models.NewTaskRef(req.Category, req.Identifier)
	if err != nil {
		return dto.ProofResponse{}, err
	}

	data, err := s.readImage(file)
	if err != nil {
		return dto.ProofResponse{}, err
	}

	asset, err := s.images.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		return dto.ProofResponse{}, fmt.Errorf("failed to store proof photo: %w", err)
	}

	proof := models.Proof{
		Category:       string(ref.Category),
		TaskIdentifier: ref.Identifier,
		MemberID:       memberID,
		ImageRef:       asset.PublicID,
		ImageURL:       asset.URL,
		Notes:          req.Notes,
		Status:         models.ProofStatusUploaded,
		Attempt:        1,
	}

	if err := s.proofs.Create(ctx, &proof); err != nil {
		if cleanupErr := s.images.Delete(ctx, asset.PublicID); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("public_id", asset.PublicID).Msg("failed to clean up orphaned photo")
		}
		return dto.ProofResponse{}, err
	}

	observability.ProofSubmissions(proof.Category)
	s.recordActivity(ctx, memberID, "proof.submitted", proof.ID, map[string]interface{}{
		"category":   proof.Category,
		"identifier": proof.TaskIdentifier,
	})

	s.runAutomatedStage(ctx, &proof)

	return s.GetByID(ctx, proof.ID)
}

func (s *proofService) Resubmit(ctx context.Context, proofID, memberID uint, req dto.ProofResubmitRequest, file *multipart.FileHeader) (dto.ProofResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProofResponse{}, err
	}

	if len(strings.TrimSpace(req.Note)) < s.noteMinLength {
		return dto.ProofResponse{}, fmt.Errorf("%w: at least %d characters required", ErrNoteTooShort, s.noteMinLength)
	}

	proof, err := s.loadOwned(ctx, proofID, memberID)
	if err != nil {
		return dto.ProofResponse{}, err
	}

	if proof.Status != models.ProofStatusNeedsRevision {
		return dto.ProofResponse{}, ErrProofConflict
	}

	data, err := s.readImage(file)
	if err != nil {
		return dto.ProofResponse{}, err
	}

	asset, err := s.images.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		return dto.ProofResponse{}, fmt.Errorf("failed to store proof photo: %w", err)
	}

	previousRef := proof.ImageRef

	proof.ImageRef = asset.PublicID
	proof.ImageURL = asset.URL
	proof.Notes = req.Note
	proof.Attempt++
	proof.Status = models.ProofStatusUploaded
	proof.ClearAutomated()

	if err := s.proofs.UpdateFromStatus(ctx, &proof, models.ProofStatusNeedsRevision); err != nil {
		if cleanupErr := s.images.Delete(ctx, asset.PublicID); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("public_id", asset.PublicID).Msg("failed to clean up orphaned photo")
		}
		if errors.Is(err, repository.ErrStaleProof) {
			return dto.ProofResponse{}, ErrProofConflict
		}
		return dto.ProofResponse{}, err
	}

	if previousRef != "" {
		if err := s.images.Delete(ctx, previousRef); err != nil {
			s.logger.Warn().Err(err).Str("public_id", previousRef).Msg("failed to delete replaced photo")
		}
	}

	s.recordActivity(ctx, memberID, "proof.resubmitted", proof.ID, map[string]interface{}{
		"attempt": proof.Attempt,
	})

	s.runAutomatedStage(ctx, &proof)

	return s.GetByID(ctx, proof.ID)
}

// Escalate moves a proof to human review without touching automated fields.
// Escalating an already-escalated proof is a no-op success.
func (s *proofService) Escalate(ctx context.Context, proofID, memberID uint) (dto.ProofResponse, error) {
	proof, err := s.loadOwned(ctx, proofID, memberID)
	if err != nil {
		return dto.ProofResponse{}, err
	}

	if proof.Escalated && proof.Status == models.ProofStatusPendingHuman {
		return dto.NewProofResponse(proof), nil
	}

	// Escalating a proof already awaiting human review only raises the
	// flag; any other status must legally reach pending_human.
	if proof.Status != models.ProofStatusPendingHuman &&
		!models.CanTransition(proof.Status, models.ProofStatusPendingHuman) {
		return dto.ProofResponse{}, ErrProofConflict
	}

	fromStatus := proof.Status
	proof.Escalated = true
	proof.Status = models.ProofStatusPendingHuman

	if err := s.proofs.UpdateFromStatus(ctx, &proof, fromStatus); err != nil {
		if errors.Is(err, repository.ErrStaleProof) {
			return dto.ProofResponse{}, ErrProofConflict
		}
		return dto.ProofResponse{}, err
	}

	s.recordActivity(ctx, memberID, "proof.escalated", proof.ID, nil)
	s.notifyReviewers(ctx, proof)

	return dto.NewProofResponse(proof), nil
}

func (s *proofService) GetByID(ctx context.Context, id uint) (dto.ProofResponse, error) {
	proof, err := s.proofs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProofResponse{}, ErrProofNotFound
		}
		return dto.ProofResponse{}, err
	}

	return dto.NewProofResponse(proof), nil
}

func (s *proofService) List(ctx context.Context, filter dto.ProofFilter) ([]dto.ProofResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	proofs, err := s.proofs.List(ctx, repository.ProofFilter{
		MemberID: filter.MemberID,
		Status:   filter.Status,
		Category: filter.Category,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewProofResponseSlice(proofs), nil
}

// runAutomatedStage advances a freshly uploaded proof through the automated
// review. Every branch lands the proof in needs_revision or pending_human;
// evaluator failures surface as the fallback verdict, never as an error.
func (s *proofService) runAutomatedStage(ctx context.Context, proof *models.Proof) {
	rule, err := s.rules.Resolve(ctx, proof.TaskRef())
	if err != nil && !errors.Is(err, ErrRuleNotFound) {
		s.logger.Error().Err(err).Uint("proof_id", proof.ID).Msg("rule lookup failed, routing to human review")
	}

	automated := err == nil && rule.AutoReview && s.evaluator != nil
	if !automated {
		s.transition(ctx, proof, models.ProofStatusUploaded, models.ProofStatusPendingHuman)
		s.notifyReviewers(ctx, *proof)
		return
	}

	if !s.transition(ctx, proof, models.ProofStatusUploaded, models.ProofStatusReviewingAutomated) {
		return
	}

	exemplars := s.patterns.Exemplars(ctx, proof.Category, proof.TaskIdentifier)
	result := s.evaluator.Evaluate(ctx, proof, rule, exemplars)

	now := time.Now()
	proof.AutoPassed = &result.Passed
	proof.AutoFeedback = &result.Feedback
	proof.AutoConfidence = &result.Confidence
	proof.EvaluatedAt = &now
	proof.AutoChecklist = nil
	for _, item := range result.Checklist {
		proof.AutoChecklist = append(proof.AutoChecklist, models.ChecklistResult{
			Item:   item.Item,
			Passed: item.Passed,
			Note:   item.Note,
		})
	}

	next := models.ProofStatusNeedsRevision
	if result.Passed {
		next = models.ProofStatusPendingHuman
	}

	if !s.transition(ctx, proof, models.ProofStatusReviewingAutomated, next) {
		return
	}

	if next == models.ProofStatusPendingHuman {
		s.notifyReviewers(ctx, *proof)
	} else {
		s.notifier.Notify(ctx, proof.MemberID, "proof_needs_revision", result.Feedback)
	}
}

// transition persists a guarded status change. A false return means the
// proof moved concurrently (e.g. the submitter escalated mid-evaluation);
// the concurrent change wins and this verdict is dropped.
func (s *proofService) transition(ctx context.Context, proof *models.Proof, from, to string) bool {
	proof.Status = to
	if err := s.proofs.UpdateFromStatus(ctx, proof, from); err != nil {
		if errors.Is(err, repository.ErrStaleProof) {
			s.logger.Info().Uint("proof_id", proof.ID).Str("from", from).Str("to", to).
				Msg("proof changed concurrently, dropping automated transition")
			return false
		}
		s.logger.Error().Err(err).Uint("proof_id", proof.ID).Msg("failed to persist proof transition")
		return false
	}

	return true
}

func (s *proofService) loadOwned(ctx context.Context, proofID, memberID uint) (models.Proof, error) {
	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Proof{}, ErrProofNotFound
		}
		return models.Proof{}, err
	}

	if proof.MemberID != memberID {
		return models.Proof{}, ErrNotProofOwner
	}

	return proof, nil
}

func (s *proofService) readImage(file *multipart.FileHeader) ([]byte, error) {
	if file == nil {
		return nil, fmt.Errorf("proof photo is required")
	}

	if file.Size > s.imageMaxBytes {
		return nil, ErrImageTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.imageMaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	if int64(len(data)) > s.imageMaxBytes {
		return nil, ErrImageTooLarge
	}

	detected := mimetype.Detect(data)
	for _, accepted := range acceptedImageMIMEs {
		if detected.Is(accepted) {
			return data, nil
		}
	}

	return nil, ErrInvalidImage
}

func (s *proofService) notifyReviewers(ctx context.Context, proof models.Proof) {
	parents, err := s.members.ListByRole(ctx, models.MemberRoleParent)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list reviewers for notification")
		return
	}

	message := fmt.Sprintf("A %s proof for %q is waiting for review", proof.Category, proof.TaskIdentifier)
	for _, parent := range parents {
		s.notifier.Notify(ctx, parent.ID, "proof_pending_review", message)
	}
}

func (s *proofService) recordActivity(ctx context.Context, memberID uint, action string, proofID uint, metadata map[string]interface{}) {
	_, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    memberID,
		ActorRole:  models.MemberRoleKid,
		Action:     action,
		EntityType: "proof",
		EntityID:   &proofID,
		Metadata:   metadata,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

