package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketOf(t *testing.T) {
	t.Parallel()

	base := time.UnixMilli(1_700_000_000_000)
	assert.Equal(t, uint64(1_700_000_000_000)/200, bucketOf(base))

	// Two moments inside the same 200ms window share a bucket.
	assert.Equal(t, bucketOf(base), bucketOf(base.Add(150*time.Millisecond)))

	// Crossing the boundary advances the bucket by exactly one.
	assert.Equal(t, bucketOf(base)+1, bucketOf(base.Add(200*time.Millisecond)))
}

func TestCurrentBucket(t *testing.T) {
	t.Parallel()

	before := CurrentBucket()
	time.Sleep(5 * time.Millisecond)
	after := CurrentBucket()
	assert.GreaterOrEqual(t, after, before)
}
