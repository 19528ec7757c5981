// Package kafka wires the assessment event producer and the request consumer to the brokers.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ortelius/pdvd-assess/events/modules/assessments"
	"github.com/ortelius/pdvd-assess/internal/config"
	"github.com/ortelius/pdvd-assess/util"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

var logger = util.InitLogger()

const maxReadPause = 10 * time.Second

// ErrNoBrokers is returned when no broker address is configured.
var ErrNoBrokers = errors.New("no kafka brokers configured")

// messageReader is the subset of *kafka.Reader the consumer loop needs.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewDialer configures SASL/PLAIN over TLS when credentials are provided,
// otherwise a plain dialer for local development.
func NewDialer(cfg config.KafkaConfig) *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.SecureTransport() {
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.APIKey,
			Password: cfg.APISecret,
		}
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return dialer
}

// NewTransport is the writer-side counterpart of NewDialer.
func NewTransport(cfg config.KafkaConfig) *kafka.Transport {
	if !cfg.SecureTransport() {
		return nil
	}
	return &kafka.Transport{
		SASL: plain.Mechanism{
			Username: cfg.APIKey,
			Password: cfg.APISecret,
		},
		TLS: &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// NewProducer builds the assessment event producer for the configured brokers.
func NewProducer(cfg config.KafkaConfig) *assessments.Producer {
	return assessments.NewProducer(cfg.Brokers, cfg.EventsTopic, NewTransport(cfg))
}

// RunEventProcessor checks broker connectivity, then consumes assessment
// requests in the background until ctx is cancelled.
func RunEventProcessor(ctx context.Context, cfg config.KafkaConfig, assessor assessments.Assessor) error {
	if len(cfg.Brokers) == 0 {
		return ErrNoBrokers
	}

	dialer := NewDialer(cfg)

	// Three attempts before giving up
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), 2)
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		logger.Sugar().Infof("Kafka connection attempt %d/3...", attempt)
		conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
		if err != nil {
			return err
		}
		return conn.Close()
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return err
	}

	topic := cfg.RequestsTopic
	if topic == "" {
		topic = assessments.RequestsTopic
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    topic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	go consume(ctx, reader, assessor, newReadBackOff())
	return nil
}

// newReadBackOff paces the consumer while the brokers keep failing reads.
// It never gives up; the context ends the loop.
func newReadBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func consume(ctx context.Context, reader messageReader, assessor assessments.Assessor, pause backoff.BackOff) {
	defer reader.Close()

	logger.Sugar().Infof("Kafka Event Processor started. Listening for assessment requests...")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Sugar().Infof("Kafka Event Processor stopped")
				return
			}
			wait := pause.NextBackOff()
			if wait == backoff.Stop {
				wait = maxReadPause
			}
			logger.Sugar().Warnf("Failed to read Kafka message, retrying in %s: %v", wait, err)
			select {
			case <-ctx.Done():
				logger.Sugar().Infof("Kafka Event Processor stopped")
				return
			case <-time.After(wait):
			}
			continue
		}
		pause.Reset()

		if err := assessments.HandleAssessmentRequested(ctx, msg.Value, assessor); err != nil {
			logger.Sugar().Errorf("Failed to handle message at offset %d: %v", msg.Offset, err)
		}
	}
}
