package assessments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ortelius/pdvd-assess/model"
	"github.com/ortelius/pdvd-assess/util"
)

var logger = util.InitLogger()

// Assessor runs an assessment request.
type Assessor interface {
	Assess(ctx context.Context, req model.AssessmentRequest) (*model.Assessment, error)
}

// HandleAssessmentRequested processes an assessment request event from Kafka.
func HandleAssessmentRequested(ctx context.Context, msg []byte, assessor Assessor) error {
	var event AssessmentRequestedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal AssessmentRequestedEvent: %w", err)
	}

	if event.EventType != "" && event.EventType != EventAssessmentRequested {
		return fmt.Errorf("unexpected event type %q", event.EventType)
	}

	if err := event.Request.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	logger.Sugar().Infof("Processing assessment of %s for application %s (event=%s)",
		event.Request.CveID, event.Request.ApplicationKey, event.EventID)

	assessment, err := assessor.Assess(ctx, event.Request)
	if err != nil {
		return fmt.Errorf("assessment of %s failed: %w", event.Request.CveID, err)
	}

	logger.Sugar().Infof("Assessed %s for %s: final=%.1f status=%s",
		assessment.CveID, assessment.ApplicationKey, assessment.FinalScore, assessment.Status)
	return nil
}
