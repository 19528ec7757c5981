package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ortelius/pdvd-assess/model"
)

const (
	geminiAPIURL       = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel = "gemini-2.5-flash"
)

// GeminiProvider implements Provider using the Gemini generateContent API.
type GeminiProvider struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewGemini creates a Gemini provider.
func NewGemini(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrProviderNotConfigured)
	}
	if model == "" {
		model = geminiDefaultModel
	}
	return &GeminiProvider{
		apiKey: apiKey,
		apiURL: geminiAPIURL,
		model:  strings.TrimPrefix(model, "models/"),
		client: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (g *GeminiProvider) Name() string { return "Google " + g.model }

func (g *GeminiProvider) Analyze(ctx context.Context, vuln *model.Vulnerability, app *model.Application) (Analysis, error) {
	logger.Sugar().Debugf("Analyzing %s with Gemini for application %s", vuln.CVEID(), app.Name)

	prompt := systemPrompt + "\n\n" + BuildPrompt(vuln, app) +
		"\n\nRespond with a JSON object containing: score (0-10), justification (detailed string), and confidence (0-1)."

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      defaultTemperature,
			MaxOutputTokens:  geminiMaxTokens,
			TopP:             0.8,
			TopK:             40,
			ResponseMimeType: "application/json",
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.apiURL, g.model)
	var result geminiResponse
	if err := postJSON(ctx, g.client, "gemini", url, map[string]string{
		"X-Goog-Api-Key": g.apiKey,
	}, reqBody, &result); err != nil {
		return Analysis{}, err
	}

	if len(result.Candidates) == 0 {
		return Analysis{}, fmt.Errorf("%w: gemini: no candidates in response", ErrInvalidResponse)
	}

	candidate := result.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		logger.Sugar().Warnf("Gemini response truncated due to MAX_TOKENS")
	}
	for _, part := range candidate.Content.Parts {
		if strings.TrimSpace(part.Text) != "" {
			return parseAnalysis(part.Text, g.Name())
		}
	}

	return Analysis{}, fmt.Errorf("%w: gemini: empty content (finish reason %q)", ErrInvalidResponse, candidate.FinishReason)
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}
