// Package ai defines the provider interface and the LLM clients that suggest a
// contextual severity score for a vulnerability in an application.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/ortelius/pdvd-assess/util"
)

var logger = util.InitLogger()

// Errors returned by providers and the resolver.
var (
	ErrInvalidConfidence     = scoring.ErrInvalidConfidence
	ErrInvalidResponse       = errors.New("invalid AI response")
	ErrUnknownProvider       = errors.New("unknown AI provider")
	ErrProviderNotConfigured = errors.New("AI provider not configured")
)

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 2000
	geminiMaxTokens    = 2048
	defaultTimeout     = 30 * time.Second
)

// Analysis is a provider's suggestion. Score is reported as received and may
// fall outside the CVSS range; callers validate it.
type Analysis struct {
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
	Confidence    float64 `json:"confidence"`
	Provider      string  `json:"provider"`
}

// NewAnalysis builds an Analysis, rejecting confidences outside [0.0, 1.0].
func NewAnalysis(score float64, justification string, confidence float64, provider string) (Analysis, error) {
	if err := scoring.ValidateConfidence(confidence); err != nil {
		return Analysis{}, fmt.Errorf("%s: %w", provider, err)
	}
	return Analysis{
		Score:         score,
		Justification: justification,
		Confidence:    confidence,
		Provider:      provider,
	}, nil
}

// Provider analyses a vulnerability in the context of an application.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, vuln *model.Vulnerability, app *model.Application) (Analysis, error)
}
