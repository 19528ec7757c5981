// Package telemetry holds the Prometheus collectors for the assessment pipeline.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AssessmentsTotal counts finished assessments by provider and status
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdvd_assess",
			Name:      "assessments_total",
			Help:      "Total number of assessments by provider and resulting status",
		},
		[]string{"provider", "status"},
	)

	// AIRejectionsTotal counts AI analyses discarded in favour of the baseline
	AIRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdvd_assess",
			Name:      "ai_rejections_total",
			Help:      "Total number of AI analyses rejected, by reason",
		},
		[]string{"reason"},
	)

	// ReviewsRequiredTotal counts assessments flagged for an analyst
	ReviewsRequiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdvd_assess",
			Name:      "reviews_required_total",
			Help:      "Total number of assessments flagged for human review",
		},
	)

	// ProviderErrorsTotal counts failed provider calls
	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdvd_assess",
			Name:      "provider_errors_total",
			Help:      "Total number of failed AI provider calls",
		},
		[]string{"provider"},
	)

	// FinalScores tracks the distribution of final severity scores
	FinalScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pdvd_assess",
			Name:      "final_score",
			Help:      "Distribution of final contextual severity scores",
			Buckets:   []float64{0.1, 4.0, 7.0, 9.0, 10.0},
		},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(AssessmentsTotal)
		prometheus.DefaultRegisterer.Register(AIRejectionsTotal)
		prometheus.DefaultRegisterer.Register(ReviewsRequiredTotal)
		prometheus.DefaultRegisterer.Register(ProviderErrorsTotal)
		prometheus.DefaultRegisterer.Register(FinalScores)
	})
}
