package probe

import (
	"math"
	"time"
)

// TestResult is one bucket's verdict-ready summary: its TPS and mean
// per-transaction latency. It carries no bucket identity because the
// stability window only ever cares about the recent sequence of values,
// never which bucket produced them (spec §4.5).
type TestResult struct {
	TPS     float64
	Latency time.Duration
}

// TestResults is a bounded FIFO window of recent TestResult values, used by
// the controller to decide whether throughput has stabilized at a given
// concurrency level (spec §4.5).
type TestResults struct {
	window []TestResult
	maxLen int
}

// NewTestResults returns an empty window capped at maxLen entries.
func NewTestResults(maxLen int) *TestResults {
	return &TestResults{maxLen: maxLen}
}

// Append adds results to the window, evicting the oldest entries once maxLen
// is exceeded.
func (t *TestResults) Append(results ...TestResult) {
	t.window = append(t.window, results...)
	if over := len(t.window) - t.maxLen; over > 0 {
		t.window = t.window[over:]
	}
}

// Len reports how many results are currently held.
func (t *TestResults) Len() int {
	return len(t.window)
}

// Reset empties the window, used when the controller moves to a new
// concurrency level and wants no history carried over from the last one.
func (t *TestResults) Reset() {
	t.window = t.window[:0]
}

// MeanTPS is the arithmetic mean of the window's TPS values.
func (t *TestResults) MeanTPS() float64 {
	return mean(tpsValues(t.window))
}

// MeanLatencyMicros is the arithmetic mean of the window's latencies, in
// microseconds (float, for use in the relative-stddev check).
func (t *TestResults) MeanLatencyMicros() float64 {
	return mean(latencyMicroValues(t.window))
}

// StdDevTPS is the population standard deviation (divisor = count, not
// count-1) of the window's TPS values.
func (t *TestResults) StdDevTPS() float64 {
	return stddev(tpsValues(t.window), t.MeanTPS())
}

// StdDevLatencyMicros is the population standard deviation of the window's
// latencies, in microseconds.
func (t *TestResults) StdDevLatencyMicros() float64 {
	return stddev(latencyMicroValues(t.window), t.MeanLatencyMicros())
}

// Verify reports whether the window counts as stable: both the TPS and the
// latency relative standard deviation (100 * stddev / mean) must fall in
// [0, spread) (spec §4.5). A zero mean makes its ratio vacuously 0 rather
// than failing the check, since a window of all-zero values has no spread
// to speak of.
func (t *TestResults) Verify(spread float64) bool {
	if len(t.window) == 0 {
		return false
	}
	tpsRelative := 0.0
	if tpsMean := t.MeanTPS(); tpsMean != 0 {
		tpsRelative = 100 * t.StdDevTPS() / tpsMean
	}

	latRelative := 0.0
	if latMean := t.MeanLatencyMicros(); latMean != 0 {
		latRelative = 100 * t.StdDevLatencyMicros() / latMean
	}

	return tpsRelative >= 0 && tpsRelative < spread && latRelative >= 0 && latRelative < spread
}

func tpsValues(window []TestResult) []float64 {
	values := make([]float64, len(window))
	for i, r := range window {
		values[i] = r.TPS
	}
	return values
}

func latencyMicroValues(window []TestResult) []float64 {
	values := make([]float64, len(window))
	for i, r := range window {
		values[i] = float64(r.Latency.Nanoseconds()) / 1000
	}
	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
