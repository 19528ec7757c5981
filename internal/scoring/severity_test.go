package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeverityScore(t *testing.T) {
	tests := []struct {
		value float64
		valid bool
	}{
		{0.0, true},
		{5.5, true},
		{10.0, true},
		{-0.01, false},
		{10.01, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}

	for _, tt := range tests {
		s, err := NewSeverityScore(tt.value)
		if tt.valid {
			require.NoError(t, err, "value %v", tt.value)
			assert.Equal(t, tt.value, s.Value())
		} else {
			assert.ErrorIs(t, err, ErrInvalidScore, "value %v", tt.value)
		}
	}
}

func TestSeverityScoreIsCritical(t *testing.T) {
	assert.False(t, score(t, 8.99).IsCritical())
	assert.True(t, score(t, 9.0).IsCritical())
	assert.True(t, score(t, 10.0).IsCritical())
}

func TestSeverityScoreCompareAndRating(t *testing.T) {
	low, high := score(t, 3.1), score(t, 7.4)
	assert.Equal(t, -1, low.Compare(high))
	assert.Equal(t, 1, high.Compare(low))
	assert.Equal(t, 0, low.Compare(score(t, 3.1)))

	assert.Equal(t, "LOW", low.Rating())
	assert.Equal(t, "HIGH", high.Rating())
	assert.Equal(t, "CRITICAL", score(t, 9.0).Rating())
	assert.Equal(t, "7.4", high.String())
}
