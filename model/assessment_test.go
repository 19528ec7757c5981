package model

import (
	"testing"

	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessmentStatusHelpers(t *testing.T) {
	assert.True(t, StatusCompleted.IsFinished())
	assert.True(t, StatusFailed.IsFinished())
	assert.False(t, StatusRequiresReview.IsFinished())
	assert.True(t, StatusInProgress.CanBeModified())
	assert.True(t, StatusRequiresReview.CanBeModified())
	assert.False(t, StatusCompleted.CanBeModified())
}

func TestAssessmentRequestValidate(t *testing.T) {
	req := AssessmentRequest{CveID: "cve-2023-1234", ApplicationKey: " app1 "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "CVE-2023-1234", req.CveID)
	assert.Equal(t, "app1", req.ApplicationKey)

	req = AssessmentRequest{CveID: "bogus", ApplicationKey: "app1"}
	assert.ErrorIs(t, req.Validate(), ErrInvalidCveID)

	req = AssessmentRequest{CveID: "CVE-2023-1234"}
	assert.ErrorIs(t, req.Validate(), ErrInvalidApplication)
}

func outcome(t *testing.T, ai, baseline, confidence float64, justification string) scoring.Outcome {
	t.Helper()
	a, err := scoring.NewSeverityScore(ai)
	require.NoError(t, err)
	b, err := scoring.NewSeverityScore(baseline)
	require.NoError(t, err)
	out, err := scoring.Evaluate(a, b, confidence, justification)
	require.NoError(t, err)
	return out
}

func TestAssessmentApplyOutcome(t *testing.T) {
	just := "The vulnerable code path is reachable from the public checkout endpoint and handles card data."

	a := NewAssessment("CVE-2023-1234", "app1")
	a.ApplyOutcome(outcome(t, 6.0, 6.0, 0.95, just))
	assert.Equal(t, StatusCompleted, a.Status)
	assert.False(t, a.RequiresReview)
	assert.False(t, a.ScoreAdjusted())
	assert.Equal(t, "MEDIUM", a.SeverityRating)

	b := NewAssessment("CVE-2023-1234", "app1")
	b.ApplyOutcome(outcome(t, 7.0, 9.5, 0.8, just))
	assert.Equal(t, StatusRequiresReview, b.Status)
	assert.True(t, b.RequiresReview)

	c := NewAssessment("CVE-2023-1234", "app1")
	c.ApplyOutcome(outcome(t, 10.0, 7.0, 0.9, just))
	assert.True(t, c.ScoreAdjusted())
	assert.InDelta(t, 8.05, c.FinalScore, 1e-9)
}

func TestAssessmentCompleteReview(t *testing.T) {
	a := NewAssessment("CVE-2023-1234", "app1")
	assert.ErrorIs(t, a.CompleteReview("alice", 7.0, ""), ErrInvalidStateTransition)

	a.Status = StatusRequiresReview
	assert.ErrorIs(t, a.CompleteReview(" ", 7.0, ""), ErrInvalidStateTransition)
	assert.ErrorIs(t, a.CompleteReview("alice", 12.0, ""), scoring.ErrInvalidScore)

	require.NoError(t, a.CompleteReview("alice", 7.2, "confirmed exploitability"))
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Equal(t, "alice", a.ReviewedBy)
	assert.Equal(t, 7.2, a.FinalScore)
	assert.Equal(t, "HIGH", a.SeverityRating)
	assert.NotNil(t, a.ReviewedAt)
	assert.False(t, a.RequiresReview)

	assert.ErrorIs(t, a.CompleteReview("bob", 5.0, ""), ErrInvalidStateTransition)

	f := NewAssessment("CVE-2023-1234", "app1")
	f.Fail("osv unavailable")
	assert.Equal(t, StatusFailed, f.Status)
	assert.True(t, f.Status.IsFinished())
}
