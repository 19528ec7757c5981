// Package assessments defines the Kafka event contracts for CVE severity assessments.
package assessments

import (
	"time"

	"github.com/ortelius/pdvd-assess/model"
)

// Event types and topics
const (
	EventAssessmentRequested = "assessment.requested"
	EventAssessmentCompleted = "assessment.completed"
	EventScoreAdjusted       = "assessment.score_adjusted"

	RequestsTopic = "assessment-requests"
	EventsTopic   = "assessment-events"

	SchemaVersion = "v1"
)

// EventHeader carries the fields common to every event.
type EventHeader struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`
}

// AssessmentRequestedEvent asks the worker to assess a CVE for an application.
type AssessmentRequestedEvent struct {
	EventHeader
	Request model.AssessmentRequest `json:"request"`
}

// AssessmentCompletedEvent is published after an assessment is stored.
type AssessmentCompletedEvent struct {
	EventHeader
	AssessmentKey  string  `json:"assessment_key"`
	CveID          string  `json:"cve_id"`
	ApplicationKey string  `json:"application_key"`
	FinalScore     float64 `json:"final_score"`
	SeverityRating string  `json:"severity_rating"`
	Confidence     float64 `json:"confidence"`
	Provider       string  `json:"provider"`
	AIRejected     bool    `json:"ai_rejected"`
	RequiresReview bool    `json:"requires_review"`
	Status         string  `json:"status"`
}

// ScoreAdjustedEvent is published when the final score departs from the
// previous score, either the contextual baseline or an earlier final score.
type ScoreAdjustedEvent struct {
	EventHeader
	AssessmentKey  string  `json:"assessment_key"`
	CveID          string  `json:"cve_id"`
	ApplicationKey string  `json:"application_key"`
	PreviousScore  float64 `json:"previous_score"`
	NewScore       float64 `json:"new_score"`
	Justification  string  `json:"justification"`
	AdjustedBy     string  `json:"adjusted_by"`
}
