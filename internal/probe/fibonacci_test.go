package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFibonacciSequence(t *testing.T) {
	t.Parallel()

	f := newFibonacci()
	var got []uint32
	for i := 0; i < 8; i++ {
		got = append(got, f.Next())
	}
	assert.Equal(t, []uint32{1, 1, 2, 3, 5, 8, 13, 21}, got)
}

func TestLevelsSkipsBelowMinAndStopsAtMax(t *testing.T) {
	t.Parallel()

	levels := Levels(1, 4)
	assert.Equal(t, []int{1, 1, 2, 3}, levels)
}

func TestLevelsEmptyWhenMinExceedsMax(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Levels(50, 8))
}
