package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitMetricsIsIdempotent(t *testing.T) {
	InitMetrics()
	InitMetrics()

	err := prometheus.DefaultRegisterer.Register(AssessmentsTotal)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(AIRejectionsTotal.WithLabelValues("low_confidence"))
	AIRejectionsTotal.WithLabelValues("low_confidence").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AIRejectionsTotal.WithLabelValues("low_confidence")))
}
