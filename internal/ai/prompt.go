package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/ortelius/pdvd-assess/model"
)

const systemPrompt = `You are a security expert specializing in vulnerability assessment.
Your task is to analyze a CVE vulnerability in the context of a specific application
and provide a contextual risk score with justification.

CRITICAL RULES:
1. Your score must be between 0.0 and 10.0
2. Provide a clear, technical justification (minimum 100 characters)
3. Consider the application context: exposure, data sensitivity, environment
4. Be conservative - when in doubt, err on the side of higher severity
5. Respond in JSON format ONLY with fields: score, justification, confidence

Response format:
{
  "score": <number between 0.0 and 10.0>,
  "justification": "<detailed explanation>",
  "confidence": <number between 0.0 and 1.0>
}`

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// BuildPrompt renders the vulnerability and application context for a model.
func BuildPrompt(vuln *model.Vulnerability, app *model.Application) string {
	description := vuln.Description()
	if description == "" {
		description = "No description"
	}

	var b strings.Builder
	b.WriteString("Analyze this vulnerability:\n\n")
	fmt.Fprintf(&b, "CVE ID: %s\n", vuln.CVEID())
	fmt.Fprintf(&b, "Base CVSS Score: %.1f (%s)\n", vuln.CVSSBase, vuln.SeverityRating)
	fmt.Fprintf(&b, "Description: %s\n", description)
	fmt.Fprintf(&b, "Affected Packages: %s\n\n", listOrNone(vuln.AffectedPackages()))

	b.WriteString("Application Context:\n")
	fmt.Fprintf(&b, "- Name: %s\n", app.Name)
	fmt.Fprintf(&b, "- Tech Stack: %s\n", listOrNone(app.TechStack))
	fmt.Fprintf(&b, "- Dependencies Count: %d\n", len(app.Dependencies))
	if hits := app.AffectedDependencies(vuln.Vulnerability); len(hits) > 0 {
		names := make([]string, 0, len(hits))
		for _, d := range hits {
			names = append(names, d.Name+"@"+d.Version)
		}
		fmt.Fprintf(&b, "- Affected Dependencies: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "- Internet Exposed: %s\n", yesNo(app.InternetExposed))
	fmt.Fprintf(&b, "- Data Sensitivity: %s\n", app.DataSensitivity)
	fmt.Fprintf(&b, "- Runtime Environments: %s\n", listOrNone(app.RuntimeEnvironments))
	fmt.Fprintf(&b, "- Production: %s\n", yesNo(app.IsInProduction()))
	fmt.Fprintf(&b, "- Known Mitigations: %s\n\n", listOrNone(app.KnownMitigations))

	b.WriteString(`Provide a contextual risk score (0.0-10.0) considering:
1. The base CVSS score
2. Application exposure and environment
3. Data sensitivity
4. Existing mitigations
5. Technology stack relevance

Your confidence level should reflect certainty in your assessment.`)
	return b.String()
}

// ExtractJSON strips markdown code fences and surrounding whitespace from LLM output.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type analysisPayload struct {
	Score         *float64 `json:"score"`
	Justification string   `json:"justification"`
	Confidence    *float64 `json:"confidence"`
}

// parseAnalysis decodes the model's JSON answer.
func parseAnalysis(text, provider string) (Analysis, error) {
	var p analysisPayload
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &p); err != nil {
		return Analysis{}, fmt.Errorf("%w: %s: %v", ErrInvalidResponse, provider, err)
	}
	if p.Score == nil {
		return Analysis{}, fmt.Errorf("%w: %s: missing score", ErrInvalidResponse, provider)
	}

	justification := strings.TrimSpace(p.Justification)
	if len([]rune(justification)) < scoring.MinJustificationLength {
		return Analysis{}, fmt.Errorf("%w: %s: justification shorter than %d characters", ErrInvalidResponse, provider, scoring.MinJustificationLength)
	}

	confidence := scoring.DefaultAIConfidence
	if p.Confidence != nil {
		confidence = *p.Confidence
	}
	return NewAnalysis(*p.Score, justification, confidence, provider)
}
