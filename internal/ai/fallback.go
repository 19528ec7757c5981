package ai

import (
	"context"

	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/ortelius/pdvd-assess/model"
)

const fallbackJustification = "No AI provider configured. Using base CVSS score without contextual analysis. " +
	"To enable AI-enhanced analysis, set one of OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY."

// FallbackProvider echoes the CVSS base score when no model is available.
type FallbackProvider struct{}

func (FallbackProvider) Name() string { return "Fallback (No AI)" }

func (f FallbackProvider) Analyze(_ context.Context, vuln *model.Vulnerability, _ *model.Application) (Analysis, error) {
	logger.Sugar().Infof("Using fallback AI analysis for %s (no AI provider configured)", vuln.CVEID())
	return NewAnalysis(vuln.CVSSBase, fallbackJustification, scoring.DefaultFallbackConfidence, f.Name())
}
