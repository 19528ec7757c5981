package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ortelius/pdvd-assess/model"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicDefaultModel = "claude-3-5-sonnet-latest"
	anthropicAPIVersion   = "2023-06-01"
)

// AnthropicProvider implements Provider using the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewAnthropic creates a Claude provider.
func NewAnthropic(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrProviderNotConfigured)
	}
	if model == "" {
		model = anthropicDefaultModel
	}
	return &AnthropicProvider{
		apiKey: apiKey,
		apiURL: anthropicAPIURL,
		model:  model,
		client: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (a *AnthropicProvider) Name() string { return "Anthropic " + a.model }

func (a *AnthropicProvider) Analyze(ctx context.Context, vuln *model.Vulnerability, app *model.Application) (Analysis, error) {
	logger.Sugar().Debugf("Analyzing %s with Claude for application %s", vuln.CVEID(), app.Name)

	temperature := defaultTemperature
	reqBody := anthropicRequest{
		Model:       a.model,
		MaxTokens:   defaultMaxTokens,
		Temperature: &temperature,
		System:      systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildPrompt(vuln, app)},
		},
	}

	var result anthropicResponse
	if err := postJSON(ctx, a.client, "anthropic", a.apiURL, map[string]string{
		"X-API-Key":         a.apiKey,
		"Anthropic-Version": anthropicAPIVersion,
	}, reqBody, &result); err != nil {
		return Analysis{}, err
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return parseAnalysis(block.Text, a.Name())
		}
	}

	return Analysis{}, fmt.Errorf("%w: anthropic: no text content in response", ErrInvalidResponse)
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
