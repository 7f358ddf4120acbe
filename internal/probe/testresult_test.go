package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTestResultsVerifyRequiresMinLenAndLowSpread(t *testing.T) {
	t.Parallel()

	window := NewTestResults(10)
	for i := 0; i < 3; i++ {
		window.Append(TestResult{TPS: 1000, Latency: time.Millisecond})
	}
	assert.False(t, window.Verify(10))

	for i := 0; i < 10; i++ {
		window.Append(TestResult{TPS: 1000, Latency: time.Millisecond})
	}
	assert.True(t, window.Verify(10))
}

func TestTestResultsVerifyFailsOnHighVariance(t *testing.T) {
	t.Parallel()

	window := NewTestResults(10)
	values := []float64{100, 900, 100, 900, 100, 900, 100, 900, 100, 900}
	for _, v := range values {
		window.Append(TestResult{TPS: v, Latency: time.Millisecond})
	}
	assert.False(t, window.Verify(10))
}

func TestTestResultsMeanAndStdDevPopulation(t *testing.T) {
	t.Parallel()

	window := NewTestResults(4)
	window.Append(
		TestResult{TPS: 2, Latency: 2 * time.Microsecond},
		TestResult{TPS: 4, Latency: 4 * time.Microsecond},
		TestResult{TPS: 4, Latency: 4 * time.Microsecond},
		TestResult{TPS: 4, Latency: 4 * time.Microsecond},
	)
	assert.InDelta(t, 3.5, window.MeanTPS(), 0.0001)
	assert.InDelta(t, 0.8660254, window.StdDevTPS(), 0.0001)
}

func TestTestResultsResetClearsWindow(t *testing.T) {
	t.Parallel()

	window := NewTestResults(5)
	window.Append(TestResult{TPS: 100, Latency: time.Millisecond})
	window.Reset()
	assert.Equal(t, 0, window.Len())
}
