package probe

import "time"

// BucketWidth is the fixed time-bucket width samples are quantized to (spec §4.1).
// It is long enough that at least one complete iteration fits inside even for
// slow queries, and short enough that many buckets elapse during a single
// stability decision.
const BucketWidth = 200 * time.Millisecond

// bucketOf returns the bucket index for a moment in time: floor(epoch_ms / 200).
func bucketOf(t time.Time) uint64 {
	return uint64(t.UnixMilli()) / uint64(BucketWidth/time.Millisecond)
}

// CurrentBucket returns the bucket index for now.
func CurrentBucket() uint64 {
	return bucketOf(time.Now())
}
