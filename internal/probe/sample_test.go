package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSampleToParallelSampleBucket(t *testing.T) {
	t.Parallel()

	s := NewSample()
	s.Increment(time.Millisecond)
	s.Increment(2 * time.Millisecond)
	s.End()

	ps := s.ToParallelSample()
	assert.Equal(t, s.Bucket(), ps.Bucket)
	assert.Equal(t, uint64(2), ps.SumTransactions)
	assert.Equal(t, 3*time.Millisecond, ps.SumWait)
	assert.Equal(t, uint64(1), ps.SampleCount)
}

func TestSampleTPSZeroElapsed(t *testing.T) {
	t.Parallel()

	s := NewSample()
	s.Increment(time.Millisecond)
	s.end = s.start
	assert.Equal(t, float64(1), s.TPS())
}
