package assessments

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes assessment outcome events to Kafka
type Producer struct {
	Writer MessageWriter
}

// NewProducer initializes a Kafka writer for assessment events
func NewProducer(brokers []string, topic string, transport *kafka.Transport) *Producer {
	if topic == "" {
		topic = EventsTopic
	}
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	if transport != nil {
		w.Transport = transport
	}
	return &Producer{Writer: w}
}

func newHeader(eventType string) EventHeader {
	return EventHeader{
		EventType:     eventType,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
	}
}

// PublishAssessmentCompleted announces a stored assessment
func (p *Producer) PublishAssessmentCompleted(ctx context.Context, a *model.Assessment) error {
	event := AssessmentCompletedEvent{
		EventHeader:    newHeader(EventAssessmentCompleted),
		AssessmentKey:  a.Key,
		CveID:          a.CveID,
		ApplicationKey: a.ApplicationKey,
		FinalScore:     a.FinalScore,
		SeverityRating: a.SeverityRating,
		Confidence:     a.Confidence,
		Provider:       a.Provider,
		AIRejected:     a.AIRejected,
		RequiresReview: a.RequiresReview,
		Status:         string(a.Status),
	}
	return p.publish(ctx, a.ApplicationKey, event)
}

// PublishScoreAdjusted announces a change of final score
func (p *Producer) PublishScoreAdjusted(ctx context.Context, a *model.Assessment, previousScore float64) error {
	adjustedBy := a.Provider
	if a.ReviewedBy != "" {
		adjustedBy = a.ReviewedBy
	}

	justification := a.Justification
	if a.ReviewNotes != "" {
		justification = a.ReviewNotes
	}

	event := ScoreAdjustedEvent{
		EventHeader:    newHeader(EventScoreAdjusted),
		AssessmentKey:  a.Key,
		CveID:          a.CveID,
		ApplicationKey: a.ApplicationKey,
		PreviousScore:  previousScore,
		NewScore:       a.FinalScore,
		Justification:  justification,
		AdjustedBy:     adjustedBy,
	}
	return p.publish(ctx, a.ApplicationKey, event)
}

// PublishAssessmentRequested queues a request for the worker
func (p *Producer) PublishAssessmentRequested(ctx context.Context, req model.AssessmentRequest) error {
	event := AssessmentRequestedEvent{
		EventHeader: newHeader(EventAssessmentRequested),
		Request:     req,
	}
	return p.publish(ctx, req.ApplicationKey, event)
}

func (p *Producer) publish(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Keyed by application so events for one application stay ordered
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	return p.Writer.Close()
}
