package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ortelius/pdvd-assess/internal/ai"
	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/ortelius/pdvd-assess/internal/telemetry"
	"github.com/ortelius/pdvd-assess/model"
	"go.uber.org/zap"
)

// VulnerabilityCatalog resolves CVE identifiers to scored records.
type VulnerabilityCatalog interface {
	FetchVulnerability(ctx context.Context, cveID string) (*model.Vulnerability, error)
}

// ApplicationRepository loads applications.
type ApplicationRepository interface {
	GetApplication(ctx context.Context, key string) (*model.Application, error)
}

// AssessmentRepository persists assessments.
type AssessmentRepository interface {
	SaveAssessment(ctx context.Context, assessment *model.Assessment) error
	GetAssessment(ctx context.Context, key string) (*model.Assessment, error)
}

// EventPublisher announces assessment outcomes.
type EventPublisher interface {
	PublishAssessmentCompleted(ctx context.Context, assessment *model.Assessment) error
	PublishScoreAdjusted(ctx context.Context, assessment *model.Assessment, previousScore float64) error
}

// AssessmentService runs the assessment workflow: baseline, AI analysis,
// validation, persistence and notification.
type AssessmentService struct {
	Catalog      VulnerabilityCatalog
	Applications ApplicationRepository
	Assessments  AssessmentRepository
	Publisher    EventPublisher
	Provider     ai.Provider
	AIConfig     ai.Config
}

func (s *AssessmentService) provider(name string) (ai.Provider, error) {
	if name == "" && s.Provider != nil {
		return s.Provider, nil
	}
	return ai.Resolve(name, s.AIConfig)
}

// Assess scores one CVE against one stored application and persists the result.
func (s *AssessmentService) Assess(ctx context.Context, req model.AssessmentRequest) (*model.Assessment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	provider, err := s.provider(req.Provider)
	if err != nil {
		return nil, err
	}

	app, err := s.Applications.GetApplication(ctx, req.ApplicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load application %s: %w", req.ApplicationKey, err)
	}

	vuln, err := s.Catalog.FetchVulnerability(ctx, req.CveID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.CveID, err)
	}

	assessment, err := s.Evaluate(ctx, vuln, app, provider)
	if err != nil {
		return nil, err
	}
	assessment.CveID = req.CveID
	assessment.RequestedBy = req.RequestedBy

	if err := s.Assessments.SaveAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	s.publishCompleted(ctx, assessment)
	return assessment, nil
}

// Evaluate computes an assessment without persisting it. Provider failures
// and unusable AI scores fall back to the contextual baseline.
func (s *AssessmentService) Evaluate(ctx context.Context, vuln *model.Vulnerability, app *model.Application, provider ai.Provider) (*model.Assessment, error) {
	start := time.Now()

	baseline, err := scoring.ContextualBaseline(vuln.CVSSBase, app.RiskProfile())
	if err != nil {
		return nil, fmt.Errorf("failed to compute baseline for %s: %w", vuln.CVEID(), err)
	}

	assessment := model.NewAssessment(vuln.CVEID(), app.Key)
	assessment.ApplicationName = app.Name
	assessment.CVSSBase = vuln.CVSSBase
	assessment.RiskFactor = app.RiskFactor()
	assessment.Provider = provider.Name()
	for _, dep := range app.AffectedDependencies(vuln.Vulnerability) {
		assessment.AffectedPackages = append(assessment.AffectedPackages, dep.Name+"@"+dep.Version)
	}

	analysis, err := provider.Analyze(ctx, vuln, app)
	if err != nil {
		logger.Sugar().Warnf("AI analysis of %s with %s failed, using baseline: %v", vuln.CVEID(), provider.Name(), err)
		telemetry.ProviderErrorsTotal.WithLabelValues(provider.Name()).Inc()
		assessment.Justification = "AI analysis unavailable; contextual baseline applied."
		assessment.ApplyOutcome(scoring.BaselineOutcome(baseline, scoring.RejectProviderError))
		s.record(assessment)
		return assessment, nil
	}

	assessment.Provider = analysis.Provider
	assessment.Justification = analysis.Justification

	outcome, err := s.outcome(analysis, baseline)
	if err != nil {
		return nil, err
	}
	assessment.ApplyOutcome(outcome)
	assessment.AISuggestedScore = analysis.Score

	logger.Info("Assessment evaluated",
		zap.String("cve", assessment.CveID),
		zap.String("application", app.Name),
		zap.String("provider", assessment.Provider),
		zap.Float64("baseline", assessment.BaselineScore),
		zap.Float64("suggested", analysis.Score),
		zap.Float64("final", assessment.FinalScore),
		zap.Bool("ai_rejected", assessment.AIRejected),
		zap.String("reject_reason", assessment.RejectReason),
		zap.Bool("requires_review", assessment.RequiresReview),
		zap.Duration("elapsed", time.Since(start)),
	)

	s.record(assessment)
	return assessment, nil
}

func (s *AssessmentService) outcome(analysis ai.Analysis, baseline scoring.SeverityScore) (scoring.Outcome, error) {
	suggested, err := scoring.NewSeverityScore(analysis.Score)
	if err != nil {
		logger.Sugar().Warnf("Discarding AI score from %s: %v", analysis.Provider, err)
		return scoring.BaselineOutcome(baseline, scoring.RejectInvalidScore), nil
	}

	outcome, err := scoring.Evaluate(suggested, baseline, analysis.Confidence, analysis.Justification)
	if err != nil {
		logger.Sugar().Warnf("Discarding AI analysis from %s: %v", analysis.Provider, err)
		out := scoring.BaselineOutcome(baseline, scoring.RejectProviderError)
		out.Suggested = suggested
		return out, nil
	}
	return outcome, nil
}

func (s *AssessmentService) record(a *model.Assessment) {
	telemetry.AssessmentsTotal.WithLabelValues(a.Provider, string(a.Status)).Inc()
	telemetry.FinalScores.Observe(a.FinalScore)
	if a.AIRejected {
		telemetry.AIRejectionsTotal.WithLabelValues(a.RejectReason).Inc()
	}
	if a.RequiresReview {
		telemetry.ReviewsRequiredTotal.Inc()
	}
}

func (s *AssessmentService) publishCompleted(ctx context.Context, a *model.Assessment) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishAssessmentCompleted(ctx, a); err != nil {
		logger.Sugar().Errorf("Failed to publish assessment.completed for %s: %v", a.Key, err)
	}
	if a.ScoreAdjusted() {
		if err := s.Publisher.PublishScoreAdjusted(ctx, a, a.BaselineScore); err != nil {
			logger.Sugar().Errorf("Failed to publish assessment.score_adjusted for %s: %v", a.Key, err)
		}
	}
}

// CompleteReview records an analyst decision on an assessment awaiting review.
func (s *AssessmentService) CompleteReview(ctx context.Context, key, reviewer string, finalScore float64, notes string) (*model.Assessment, error) {
	assessment, err := s.Assessments.GetAssessment(ctx, key)
	if err != nil {
		return nil, err
	}

	previous := assessment.FinalScore
	if err := assessment.CompleteReview(reviewer, finalScore, notes); err != nil {
		return nil, err
	}

	if err := s.Assessments.SaveAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	telemetry.AssessmentsTotal.WithLabelValues(assessment.Provider, string(assessment.Status)).Inc()
	logger.Sugar().Infof("Assessment %s reviewed by %s: %.1f -> %.1f", key, reviewer, previous, assessment.FinalScore)

	if s.Publisher != nil {
		if err := s.Publisher.PublishAssessmentCompleted(ctx, assessment); err != nil {
			logger.Sugar().Errorf("Failed to publish assessment.completed for %s: %v", key, err)
		}
		if previous != assessment.FinalScore {
			if err := s.Publisher.PublishScoreAdjusted(ctx, assessment, previous); err != nil {
				logger.Sugar().Errorf("Failed to publish assessment.score_adjusted for %s: %v", key, err)
			}
		}
	}
	return assessment, nil
}
