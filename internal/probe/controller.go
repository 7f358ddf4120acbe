package probe

import (
	"context"
	"time"

	"github.com/willibrandon/pgtps/internal/pgclient"
	"github.com/willibrandon/pgtps/internal/workload"
)

// LevelResult is one concurrency level's verdict: either a TestResult (with
// Stable reporting whether the detector converged before the deadline) or,
// when the controller's window produced nothing at all, no result, which
// the caller treats as the signal to stop scanning higher levels.
type LevelResult struct {
	Result *TestResult
	Stable bool
	OK     bool
}

// Controller is the Threader: it owns the consumer fleet, drives the
// Fibonacci worker-count schedule, and runs the stability detector at each
// level (spec §4.6).
type Controller struct {
	workload   workload.Workload
	maxWorkers int
	cancel     *cancelFlag
	consumers  []*Consumer
	in         chan *ParallelSamples
	current    int
	nextWorker int
	acc        *ParallelSamples
	dial       func(context.Context) (pgclient.Client, error)
}

// NewController allocates ceil(maxWorkers/ThreadsPerConsumer)+1 consumer
// slots (spec §4.6 sizing) but starts no consumers until the first Scaleup.
func NewController(w workload.Workload, maxWorkers int) *Controller {
	return newController(w, maxWorkers, nil)
}

// NewControllerWithDialer is NewController with an overridden connection
// factory, letting tests drive every worker in the fleet against a stub
// client instead of pgx.
func NewControllerWithDialer(w workload.Workload, maxWorkers int, dial func(context.Context) (pgclient.Client, error)) *Controller {
	return newController(w, maxWorkers, dial)
}

func newController(w workload.Workload, maxWorkers int, dial func(context.Context) (pgclient.Client, error)) *Controller {
	if maxWorkers < 1 {
		maxWorkers = 1000
	}
	slots := (maxWorkers+ThreadsPerConsumer-1)/ThreadsPerConsumer + 1
	return &Controller{
		workload:   w,
		maxWorkers: maxWorkers,
		cancel:     &cancelFlag{},
		consumers:  make([]*Consumer, 0, slots),
		in:         make(chan *ParallelSamples, slots),
		acc:        NewParallelSamples(),
		dial:       dial,
	}
}

// Scaleup grows the worker fleet from its current count to target,
// distributing the new workers to the last consumer's remaining capacity
// first and spilling into freshly constructed consumers as needed (spec
// §4.6 scaleup).
func (c *Controller) Scaleup(ctx context.Context, target int) {
	extra := target - c.current
	if extra <= 0 {
		c.current = target
		return
	}

	for extra > 0 {
		if len(c.consumers) == 0 || c.consumers[len(c.consumers)-1].NumWorkers() >= ThreadsPerConsumer {
			c.consumers = append(c.consumers, NewConsumer(ctx, len(c.consumers), c.cancel, c.in))
		}
		last := c.consumers[len(c.consumers)-1]
		extra = last.Scaleup(ctx, extra, c.workload, c.nextWorkerID, c.dial)
	}
	c.current = target
}

func (c *Controller) nextWorkerID() int {
	id := c.nextWorker
	c.nextWorker++
	return id
}

// WaitStable blocks until the stability detector converges at the current
// concurrency level or the deadline expires, per spec §4.6. It returns
// OK=false when the per-level window never produced even a best-effort
// mean, or when ctx is cancelled or the shared cancellation flag is set;
// the caller treats either as a reason to stop scanning further levels.
func (c *Controller) WaitStable(ctx context.Context, spread float64, minSamples int, maxWait time.Duration) LevelResult {
	window := NewTestResults(minSamples + 1)
	deadline := time.Now().Add(maxWait)
	iterations := 0

	for {
		c.consumeFor(ctx, 200*time.Millisecond)

		results := c.acc.Results(minSamples, minSamples+1)
		if len(results) > 0 {
			window.Reset()
			window.Append(results...)
		}
		iterations++

		if window.Len() >= minSamples && window.Verify(spread) {
			return LevelResult{Result: &TestResult{TPS: window.MeanTPS(), Latency: meanLatency(window)}, Stable: true, OK: true}
		}

		if iterations >= minSamples && time.Now().After(deadline) {
			if window.Len() == 0 {
				return LevelResult{OK: false}
			}
			return LevelResult{Result: &TestResult{TPS: window.MeanTPS(), Latency: meanLatency(window)}, Stable: false, OK: true}
		}

		if ctx.Err() != nil || c.cancel.get() {
			return LevelResult{OK: false}
		}
	}
}

func meanLatency(window *TestResults) time.Duration {
	return time.Duration(window.MeanLatencyMicros() * float64(time.Microsecond))
}

// consumeFor drains the controller's inbound channel for roughly d, merging
// every batch that arrives into the per-level accumulator (spec §4.6 step 1).
func (c *Controller) consumeFor(ctx context.Context, d time.Duration) {
	end := time.Now().Add(d)
	for time.Now().Before(end) {
		if ctx.Err() != nil || c.cancel.get() {
			return
		}
		select {
		case batch := <-c.in:
			c.acc.Append(batch)
		case <-time.After(10 * time.Millisecond):
		case <-ctx.Done():
			return
		}
	}
}

// Finish sets the shared cancellation flag and sleeps proportionally to the
// current worker count so in-flight transactions drain (spec §4.6 finish).
func (c *Controller) Finish() {
	c.cancel.set()
	time.Sleep(time.Duration(c.current) * 10 * time.Millisecond)
}

// ResetLevel discards accumulated samples between concurrency levels so a
// new level's window starts clean.
func (c *Controller) ResetLevel() {
	c.acc = NewParallelSamples()
}

// Levels returns the Fibonacci worker-count schedule restricted to
// [minThreads, maxThreads]: every term skipped while below minThreads,
// scanning stopping at the first term >= maxThreads, which is included only
// when it equals maxThreads (spec §4.7).
func Levels(minThreads, maxThreads int) []int {
	var out []int
	f := newFibonacci()
	for {
		v := int(f.Next())
		if v >= minThreads && v <= maxThreads {
			out = append(out, v)
		}
		if v >= maxThreads {
			break
		}
	}
	return out
}
