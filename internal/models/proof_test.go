package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{ProofStatusUploaded, ProofStatusReviewingAutomated},
		{ProofStatusUploaded, ProofStatusPendingHuman},
		{ProofStatusReviewingAutomated, ProofStatusNeedsRevision},
		{ProofStatusReviewingAutomated, ProofStatusPendingHuman},
		{ProofStatusNeedsRevision, ProofStatusUploaded},
		{ProofStatusNeedsRevision, ProofStatusPendingHuman},
		{ProofStatusPendingHuman, ProofStatusApproved},
		{ProofStatusPendingHuman, ProofStatusRejected},
	}
	for _, pair := range allowed {
		require.True(t, CanTransition(pair[0], pair[1]), "%s -> %s should be allowed", pair[0], pair[1])
	}

	denied := [][2]string{
		{ProofStatusUploaded, ProofStatusApproved},
		{ProofStatusApproved, ProofStatusPendingHuman},
		{ProofStatusRejected, ProofStatusUploaded},
		{ProofStatusPendingHuman, ProofStatusNeedsRevision},
		{ProofStatusNeedsRevision, ProofStatusApproved},
	}
	for _, pair := range denied {
		require.False(t, CanTransition(pair[0], pair[1]), "%s -> %s should be denied", pair[0], pair[1])
	}
}

func TestProofClearAutomated(t *testing.T) {
	passed := true
	feedback := "looks clean"
	confidence := 0.9
	evaluated := time.Now()

	proof := Proof{
		Status:         ProofStatusNeedsRevision,
		Attempt:        1,
		AutoPassed:     &passed,
		AutoFeedback:   &feedback,
		AutoConfidence: &confidence,
		AutoChecklist:  []ChecklistResult{{Item: "floor swept", Passed: true}},
		EvaluatedAt:    &evaluated,
	}

	require.True(t, proof.HasAutoVerdict())
	proof.ClearAutomated()
	require.False(t, proof.HasAutoVerdict())
	require.Nil(t, proof.AutoFeedback)
	require.Nil(t, proof.AutoConfidence)
	require.Nil(t, proof.AutoChecklist)
	require.Nil(t, proof.EvaluatedAt)
}

func TestProofIsTerminal(t *testing.T) {
	require.True(t, Proof{Status: ProofStatusApproved}.IsTerminal())
	require.True(t, Proof{Status: ProofStatusRejected}.IsTerminal())
	require.False(t, Proof{Status: ProofStatusPendingHuman}.IsTerminal())
	require.False(t, Proof{Status: ProofStatusNeedsRevision}.IsTerminal())
}
