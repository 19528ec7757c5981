package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ortelius/pdvd-assess/model"
)

const (
	openaiAPIURL       = "https://api.openai.com/v1/chat/completions"
	openaiDefaultModel = "gpt-4o-mini"
)

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
type OpenAIProvider struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrProviderNotConfigured)
	}
	if model == "" {
		model = openaiDefaultModel
	}
	return &OpenAIProvider{
		apiKey: apiKey,
		apiURL: openaiAPIURL,
		model:  model,
		client: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (o *OpenAIProvider) Name() string { return "OpenAI " + o.model }

func (o *OpenAIProvider) Analyze(ctx context.Context, vuln *model.Vulnerability, app *model.Application) (Analysis, error) {
	logger.Sugar().Debugf("Analyzing %s with OpenAI for application %s", vuln.CVEID(), app.Name)

	reqBody := openaiRequest{
		Model:       o.model,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
		Messages: []openaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(vuln, app)},
		},
		ResponseFormat: &openaiResponseFormat{Type: "json_object"},
	}

	var result openaiResponse
	if err := postJSON(ctx, o.client, "openai", o.apiURL, map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	}, reqBody, &result); err != nil {
		return Analysis{}, err
	}

	if len(result.Choices) == 0 {
		return Analysis{}, fmt.Errorf("%w: openai: no choices in response", ErrInvalidResponse)
	}

	return parseAnalysis(result.Choices[0].Message.Content, o.Name())
}

type openaiRequest struct {
	Model          string                `json:"model"`
	MaxTokens      int                   `json:"max_tokens"`
	Temperature    float64               `json:"temperature"`
	Messages       []openaiMessage       `json:"messages"`
	ResponseFormat *openaiResponseFormat `json:"response_format,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponseFormat struct {
	Type string `json:"type"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}
