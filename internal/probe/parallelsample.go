package probe

import (
	"fmt"
	"sort"
	"time"
)

// ParallelSample is the fold of every worker's Sample for a single time
// bucket (spec §4.4). It carries only sums and a count, never individual
// samples, so merging many workers' output costs O(1) per Sample regardless
// of how many workers are running.
type ParallelSample struct {
	Bucket          uint64
	SumTransactions uint64
	SumWait         time.Duration
	SumDuration     time.Duration
	SampleCount     uint64
}

// add folds another ParallelSample for the same bucket into this one. It
// panics if the buckets disagree: cross-bucket merging is a programmer
// error, never a runtime condition callers need to handle (spec §1 error
// philosophy).
func (p *ParallelSample) add(other ParallelSample) {
	if p.SampleCount > 0 && p.Bucket != other.Bucket {
		panic(fmt.Sprintf("probe: cannot merge bucket %d into %d", other.Bucket, p.Bucket))
	}
	p.Bucket = other.Bucket
	p.SumTransactions += other.SumTransactions
	p.SumWait += other.SumWait
	p.SumDuration += other.SumDuration
	p.SampleCount += other.SampleCount
}

// TPS is this bucket's aggregate transactions-per-second, averaged across
// the samples folded into it (spec §4.4).
func (p ParallelSample) TPS() float64 {
	if p.SampleCount == 0 || p.SumDuration == 0 {
		return 0
	}
	avgNanos := p.SumDuration.Nanoseconds() / int64(p.SampleCount)
	if avgNanos == 0 {
		return float64(p.SumTransactions)
	}
	return 1e9 * float64(p.SumTransactions) / float64(avgNanos)
}

// Latency is this bucket's mean per-transaction wait, computed in
// microseconds to preserve resolution and then carried as a Duration.
func (p ParallelSample) Latency() time.Duration {
	if p.SumTransactions == 0 {
		return 0
	}
	micros := float64(p.SumWait.Nanoseconds()) / 1000 / float64(p.SumTransactions)
	return time.Duration(micros * float64(time.Microsecond))
}

// ParallelSamples accumulates one ParallelSample per time bucket. It is
// owned by exactly one goroutine (the consumer or the controller folding
// consumer output), so it keeps no internal lock (spec §3 ownership rules).
type ParallelSamples struct {
	byBucket map[uint64]*ParallelSample
}

// NewParallelSamples returns an empty accumulator.
func NewParallelSamples() *ParallelSamples {
	return &ParallelSamples{byBucket: make(map[uint64]*ParallelSample)}
}

// Add folds one Sample into the accumulator, creating its bucket's entry on
// first use.
func (ps *ParallelSamples) Add(s ParallelSample) {
	entry, ok := ps.byBucket[s.Bucket]
	if !ok {
		entry = &ParallelSample{}
		ps.byBucket[s.Bucket] = entry
	}
	entry.add(s)
}

// Append folds every bucket of other into ps, creating entries as needed.
// Used by the controller to fold a consumer's whole window in one call.
func (ps *ParallelSamples) Append(other *ParallelSamples) {
	for _, bucket := range other.sortedBuckets() {
		ps.Add(*other.byBucket[bucket])
	}
}

func (ps *ParallelSamples) sortedBuckets() []uint64 {
	buckets := make([]uint64, 0, len(ps.byBucket))
	for b := range ps.byBucket {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	return buckets
}

// Len reports how many distinct buckets are held.
func (ps *ParallelSamples) Len() int {
	return len(ps.byBucket)
}

// Results drains every bucket older than the previous completed bucket
// (current_bucket - 1; that bucket itself still counts as in-flight) into an
// ordered slice of TestResult. A result set shorter than minLen is returned
// empty: the caller isn't holding enough history yet to make a decision. No
// more than maxLen results are returned; older buckets beyond that are
// dropped since the stability window never looks further back (spec §4.5).
func (ps *ParallelSamples) Results(minLen, maxLen int) []TestResult {
	threshold := CurrentBucket() - 1
	buckets := ps.sortedBuckets()

	mature := buckets[:0:0]
	for _, b := range buckets {
		if b < threshold {
			mature = append(mature, b)
		}
	}

	if len(mature) < minLen {
		return nil
	}

	var dropped []uint64
	if len(mature) > maxLen {
		dropped = mature[:len(mature)-maxLen]
		mature = mature[len(mature)-maxLen:]
	}

	results := make([]TestResult, 0, len(mature))
	for _, b := range mature {
		entry := ps.byBucket[b]
		results = append(results, TestResult{TPS: entry.TPS(), Latency: entry.Latency()})
		delete(ps.byBucket, b)
	}
	for _, b := range dropped {
		delete(ps.byBucket, b)
	}
	return results
}
