package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/choreboardhq/choreboard-api/internal/dto"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/service"
	"github.com/choreboardhq/choreboard-api/pkg/ai"
)

func submitProof(t *testing.T, p *pipeline, memberID uint, category, identifier string) dto.ProofResponse {
	t.Helper()

	proof, err := p.proofs.Submit(context.Background(), memberID, dto.ProofCreateRequest{
		Category:   category,
		Identifier: identifier,
		Notes:      "all done",
	}, pngFile(t, "proof.png"))
	require.NoError(t, err)
	return proof
}

func TestSubmitAutoPassRoutesToHumanReview(t *testing.T) {
	vision := &stubVision{result: ai.VisionResult{
		Passed:     true,
		Feedback:   "Looks spotless",
		Confidence: 0.9,
		Checklist: []ai.ChecklistVerdict{
			{Item: "surface clear", Passed: true},
			{Item: "floor swept", Passed: true},
		},
	}}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	parent := createMember(t, p.db, "Sam", models.MemberRoleParent)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")

	require.Equal(t, models.ProofStatusPendingHuman, proof.Status)
	require.Equal(t, 1, proof.Attempt)
	require.NotNil(t, proof.AutoPassed)
	require.True(t, *proof.AutoPassed)
	require.NotNil(t, proof.AutoConfidence)
	require.InDelta(t, 0.9, *proof.AutoConfidence, 0.001)
	require.NotNil(t, proof.EvaluatedAt)
	require.Len(t, proof.AutoChecklist, 2)
	require.Equal(t, 1, vision.callCount())

	reviewerPings := p.notifier.byType("proof_pending_review")
	require.Len(t, reviewerPings, 1)
	require.Equal(t, parent.ID, reviewerPings[0].MemberID)
}

func TestSubmitAutoFailRoutesToNeedsRevision(t *testing.T) {
	vision := &stubVision{result: ai.VisionResult{
		Passed:     false,
		Feedback:   "The counter still has dishes on it",
		Confidence: 0.8,
	}}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	createMember(t, p.db, "Sam", models.MemberRoleParent)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")

	require.Equal(t, models.ProofStatusNeedsRevision, proof.Status)
	require.NotNil(t, proof.AutoPassed)
	require.False(t, *proof.AutoPassed)

	revisions := p.notifier.byType("proof_needs_revision")
	require.Len(t, revisions, 1)
	require.Equal(t, kid.ID, revisions[0].MemberID)
	require.Equal(t, "The counter still has dishes on it", revisions[0].Message)
	require.Empty(t, p.notifier.byType("proof_pending_review"))
}

func TestSubmitEvaluatorFailureUsesFallback(t *testing.T) {
	vision := &stubVision{err: fmt.Errorf("vision api unreachable")}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	createRule(t, p.db, "daily", "dishes", true, 5)

	proof := submitProof(t, p, kid.ID, "daily", "dishes")

	require.Equal(t, models.ProofStatusNeedsRevision, proof.Status)
	require.NotNil(t, proof.AutoPassed)
	require.False(t, *proof.AutoPassed)
	require.NotNil(t, proof.AutoConfidence)
	require.Zero(t, *proof.AutoConfidence)
	require.NotNil(t, proof.AutoFeedback)
	require.Equal(t, ai.FallbackFeedback, *proof.AutoFeedback)
}

func TestSubmitWithoutRuleGoesStraightToHumanReview(t *testing.T) {
	vision := &stubVision{result: ai.VisionResult{Passed: true, Feedback: "ok", Confidence: 1}}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	parent := createMember(t, p.db, "Sam", models.MemberRoleParent)

	proof := submitProof(t, p, kid.ID, "room", "bathroom")

	require.Equal(t, models.ProofStatusPendingHuman, proof.Status)
	require.Nil(t, proof.AutoPassed)
	require.Zero(t, vision.callCount())

	reviewerPings := p.notifier.byType("proof_pending_review")
	require.Len(t, reviewerPings, 1)
	require.Equal(t, parent.ID, reviewerPings[0].MemberID)
}

func TestSubmitAutoReviewDisabledSkipsEvaluator(t *testing.T) {
	vision := &stubVision{result: ai.VisionResult{Passed: false, Feedback: "no", Confidence: 1}}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	rule := createRule(t, p.db, "room", "bedroom", false, 10)

	// The disabled flag must survive the round trip; a column default that
	// swallows false would silently re-enable automated review.
	var stored models.EvaluationRule
	require.NoError(t, p.db.First(&stored, rule.ID).Error)
	require.False(t, stored.AutoReview)

	proof := submitProof(t, p, kid.ID, "room", "bedroom")

	require.Equal(t, models.ProofStatusPendingHuman, proof.Status)
	require.Nil(t, proof.AutoPassed)
	require.Zero(t, vision.callCount())
}

func TestSubmitWithoutEvaluatorGoesToHumanReview(t *testing.T) {
	p := newPipeline(t, nil)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")

	require.Equal(t, models.ProofStatusPendingHuman, proof.Status)
	require.Nil(t, proof.AutoPassed)
}

func TestSubmitRejectsNonImageUpload(t *testing.T) {
	p := newPipeline(t, nil)
	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)

	_, err := p.proofs.Submit(context.Background(), kid.ID, dto.ProofCreateRequest{
		Category:   "chore",
		Identifier: "kitchen-cleanup",
	}, photoFileHeader(t, "notes.txt", []byte("just some text")))

	require.ErrorIs(t, err, service.ErrInvalidImage)
}

func TestSubmitRejectsUnknownCategory(t *testing.T) {
	p := newPipeline(t, nil)
	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)

	_, err := p.proofs.Submit(context.Background(), kid.ID, dto.ProofCreateRequest{
		Category:   "garden",
		Identifier: "weeding",
	}, pngFile(t, "proof.png"))

	require.ErrorIs(t, err, models.ErrInvalidTaskRef)
}

func TestResubmitIncrementsAttemptAndReevaluates(t *testing.T) {
	vision := &stubVision{result: ai.VisionResult{Passed: false, Feedback: "messy", Confidence: 0.7}}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")
	require.Equal(t, models.ProofStatusNeedsRevision, proof.Status)

	vision.result = ai.VisionResult{Passed: true, Feedback: "much better", Confidence: 0.85}

	resubmitted, err := p.proofs.Resubmit(context.Background(), proof.ID, kid.ID, dto.ProofResubmitRequest{
		Note: "washed the remaining dishes",
	}, pngFile(t, "retry.png"))
	require.NoError(t, err)

	require.Equal(t, 2, resubmitted.Attempt)
	require.Equal(t, models.ProofStatusPendingHuman, resubmitted.Status)
	require.NotNil(t, resubmitted.AutoPassed)
	require.True(t, *resubmitted.AutoPassed)
	require.Equal(t, 2, vision.callCount())
	require.Contains(t, p.images.deleted, "test-1")
}

func TestResubmitRequiresExplanatoryNote(t *testing.T) {
	vision := &stubVision{result: ai.VisionResult{Passed: false, Feedback: "messy", Confidence: 0.7}}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")

	_, err := p.proofs.Resubmit(context.Background(), proof.ID, kid.ID, dto.ProofResubmitRequest{
		Note: "fixed",
	}, pngFile(t, "retry.png"))
	require.ErrorIs(t, err, service.ErrNoteTooShort)

	var still models.Proof
	require.NoError(t, p.db.First(&still, proof.ID).Error)
	require.Equal(t, 1, still.Attempt)
}

func TestResubmitOnlyAllowedFromNeedsRevision(t *testing.T) {
	vision := &stubVision{result: ai.VisionResult{Passed: true, Feedback: "ok", Confidence: 0.9}}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")
	require.Equal(t, models.ProofStatusPendingHuman, proof.Status)

	_, err := p.proofs.Resubmit(context.Background(), proof.ID, kid.ID, dto.ProofResubmitRequest{
		Note: "trying again anyway",
	}, pngFile(t, "retry.png"))
	require.ErrorIs(t, err, service.ErrProofConflict)
}

func TestEscalateKeepsAutomatedFields(t *testing.T) {
	vision := &stubVision{result: ai.VisionResult{Passed: false, Feedback: "messy", Confidence: 0.7}}
	p := newPipeline(t, vision)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	createMember(t, p.db, "Sam", models.MemberRoleParent)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")
	require.Equal(t, models.ProofStatusNeedsRevision, proof.Status)

	escalated, err := p.proofs.Escalate(context.Background(), proof.ID, kid.ID)
	require.NoError(t, err)

	require.Equal(t, models.ProofStatusPendingHuman, escalated.Status)
	require.True(t, escalated.Escalated)
	require.NotNil(t, escalated.AutoPassed)
	require.False(t, *escalated.AutoPassed)
	require.Equal(t, 1, vision.callCount())
}

func TestEscalateIsIdempotent(t *testing.T) {
	p := newPipeline(t, nil)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")

	first, err := p.proofs.Escalate(context.Background(), proof.ID, kid.ID)
	require.NoError(t, err)
	require.True(t, first.Escalated)

	second, err := p.proofs.Escalate(context.Background(), proof.ID, kid.ID)
	require.NoError(t, err)
	require.True(t, second.Escalated)
	require.Equal(t, models.ProofStatusPendingHuman, second.Status)
}

func TestEscalateTerminalProofConflicts(t *testing.T) {
	p := newPipeline(t, nil)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	parent := createMember(t, p.db, "Sam", models.MemberRoleParent)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")

	reviewer, err := p.reviews.Decide(context.Background(), proof.ID, parent, dto.ReviewRequest{Decision: dto.ReviewDecisionApprove})
	require.NoError(t, err)
	require.Equal(t, models.ProofStatusApproved, reviewer.Status)

	_, err = p.proofs.Escalate(context.Background(), proof.ID, kid.ID)
	require.ErrorIs(t, err, service.ErrProofConflict)
}

func TestEscalateOtherMembersProofForbidden(t *testing.T) {
	p := newPipeline(t, nil)

	kid := createMember(t, p.db, "Mika", models.MemberRoleKid)
	sibling := createMember(t, p.db, "Noa", models.MemberRoleKid)
	createRule(t, p.db, "chore", "kitchen-cleanup", true, 15)

	proof := submitProof(t, p, kid.ID, "chore", "kitchen-cleanup")

	_, err := p.proofs.Escalate(context.Background(), proof.ID, sibling.ID)
	require.ErrorIs(t, err, service.ErrNotProofOwner)
}

func TestSubmitUnknownProofLookup(t *testing.T) {
	p := newPipeline(t, nil)

	_, err := p.proofs.GetByID(context.Background(), 9999)
	require.True(t, errors.Is(err, service.ErrProofNotFound))
}
