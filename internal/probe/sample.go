package probe

import "time"

// Sample is one worker's attempt to run as many transactions as possible
// over a short measurement interval (spec §3). It is created at loop entry,
// sealed by End, shipped upstream, and never mutated after that.
type Sample struct {
	transactions uint64
	wait         time.Duration
	start        time.Time
	end          time.Time
}

// NewSample starts a new, empty sample.
func NewSample() *Sample {
	return &Sample{start: time.Now()}
}

// Increment records one completed transaction and the wait it took.
func (s *Sample) Increment(wait time.Duration) {
	s.transactions++
	s.wait += wait
}

// End seals the sample at the current time.
func (s *Sample) End() {
	s.end = time.Now()
}

// Bucket returns the time bucket this sample belongs to, derived solely from
// its start time (spec §3: belongs to exactly one time bucket).
func (s *Sample) Bucket() uint64 {
	return bucketOf(s.start)
}

// Transactions reports how many transactions this sample completed.
func (s *Sample) Transactions() uint64 {
	return s.transactions
}

// TPS is this single sample's own transactions-per-second rate, used to
// update a worker's tps_estimate (spec §4.2 step 5).
func (s *Sample) TPS() float64 {
	elapsed := s.end.Sub(s.start).Seconds()
	if elapsed <= 0 {
		return float64(s.transactions)
	}
	return float64(s.transactions) / elapsed
}

// ToParallelSample materializes this Sample into the summary-only shape used
// for fan-in (spec §4.4).
func (s *Sample) ToParallelSample() ParallelSample {
	return ParallelSample{
		Bucket:          s.Bucket(),
		SumTransactions: s.transactions,
		SumWait:         s.wait,
		SumDuration:     s.end.Sub(s.start),
		SampleCount:     1,
	}
}
