// Package model - Assessment records the outcome of scoring one CVE against one application.
package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ortelius/pdvd-assess/internal/scoring"
)

// ErrInvalidStateTransition is returned when an assessment cannot move to the requested status.
var ErrInvalidStateTransition = errors.New("invalid assessment state transition")

// AssessmentStatus is the lifecycle state of an assessment.
type AssessmentStatus string

// Assessment lifecycle states.
const (
	StatusInProgress     AssessmentStatus = "IN_PROGRESS"
	StatusCompleted      AssessmentStatus = "COMPLETED"
	StatusFailed         AssessmentStatus = "FAILED"
	StatusRequiresReview AssessmentStatus = "REQUIRES_REVIEW"
)

// IsFinished is true for COMPLETED and FAILED.
func (s AssessmentStatus) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanBeModified is true while an analyst can still change the result.
func (s AssessmentStatus) CanBeModified() bool {
	return s == StatusInProgress || s == StatusRequiresReview
}

// AssessmentRequest asks for a CVE to be scored against an application.
type AssessmentRequest struct {
	CveID          string `json:"cve_id"`
	ApplicationKey string `json:"application_key"`
	Provider       string `json:"provider,omitempty"`
	RequestedBy    string `json:"requested_by,omitempty"`
}

// Validate normalizes the CVE id and checks the application key.
func (r *AssessmentRequest) Validate() error {
	id, err := ValidateCveID(r.CveID)
	if err != nil {
		return err
	}
	r.CveID = id
	r.ApplicationKey = strings.TrimSpace(r.ApplicationKey)
	if r.ApplicationKey == "" {
		return fmt.Errorf("%w: application_key is required", ErrInvalidApplication)
	}
	return nil
}

// Assessment represents an assessment object stored in the database.
type Assessment struct {
	Key              string           `json:"_key,omitempty"`
	ObjType          string           `json:"objtype,omitempty"`
	CveID            string           `json:"cve_id"`
	ApplicationKey   string           `json:"application_key"`
	ApplicationName  string           `json:"application_name"`
	CVSSBase         float64          `json:"cvss_base"`
	RiskFactor       float64          `json:"risk_factor"`
	BaselineScore    float64          `json:"baseline_score"`
	AISuggestedScore float64          `json:"ai_suggested_score"`
	ConstrainedScore float64          `json:"constrained_score"`
	FinalScore       float64          `json:"final_score"`
	SeverityRating   string           `json:"severity_rating"`
	Confidence       float64          `json:"confidence"`
	Justification    string           `json:"justification"`
	Provider         string           `json:"provider"`
	AIRejected       bool             `json:"ai_rejected"`
	RejectReason     string           `json:"reject_reason,omitempty"`
	RequiresReview   bool             `json:"requires_review"`
	AffectedPackages []string         `json:"affected_packages,omitempty"`
	Status           AssessmentStatus `json:"status"`
	RequestedBy      string           `json:"requested_by,omitempty"`
	ReviewedBy       string           `json:"reviewed_by,omitempty"`
	ReviewNotes      string           `json:"review_notes,omitempty"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewAssessment creates an in-progress assessment
func NewAssessment(cveID, applicationKey string) *Assessment {
	now := time.Now().UTC()
	return &Assessment{
		ObjType:        "Assessment",
		CveID:          cveID,
		ApplicationKey: applicationKey,
		Status:         StatusInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a copy that shares no slices with a.
func (a *Assessment) Clone() *Assessment {
	c := *a
	c.AffectedPackages = slices.Clone(a.AffectedPackages)
	return &c
}

// ApplyOutcome copies the scoring outcome and settles the status.
func (a *Assessment) ApplyOutcome(out scoring.Outcome) {
	a.BaselineScore = out.Baseline.Value()
	a.AISuggestedScore = out.Suggested.Value()
	a.ConstrainedScore = out.Constrained.Value()
	a.FinalScore = out.Final.Value()
	a.SeverityRating = out.Final.Rating()
	a.Confidence = out.Confidence
	a.AIRejected = out.Rejected
	a.RejectReason = string(out.Reason)
	a.RequiresReview = out.RequiresReview
	if out.RequiresReview {
		a.Status = StatusRequiresReview
	} else {
		a.Status = StatusCompleted
	}
	a.UpdatedAt = time.Now().UTC()
}

// Fail marks the assessment as failed.
func (a *Assessment) Fail(reason string) {
	a.Status = StatusFailed
	a.ReviewNotes = reason
	a.UpdatedAt = time.Now().UTC()
}

// ScoreAdjusted reports whether the final score differs from the baseline.
func (a *Assessment) ScoreAdjusted() bool {
	return a.FinalScore != a.BaselineScore
}

// CompleteReview records an analyst's decision. Only assessments awaiting
// review may be completed this way.
func (a *Assessment) CompleteReview(reviewer string, finalScore float64, notes string) error {
	if a.Status != StatusRequiresReview {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, a.Status, StatusCompleted)
	}
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return fmt.Errorf("%w: reviewer is required", ErrInvalidStateTransition)
	}
	s, err := scoring.NewSeverityScore(finalScore)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	a.FinalScore = s.Value()
	a.SeverityRating = s.Rating()
	a.ReviewedBy = reviewer
	a.ReviewNotes = notes
	a.ReviewedAt = &now
	a.RequiresReview = false
	a.Status = StatusCompleted
	a.UpdatedAt = now
	return nil
}
