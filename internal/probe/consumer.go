package probe

import (
	"context"
	"time"

	"github.com/willibrandon/pgtps/internal/pgclient"
	"github.com/willibrandon/pgtps/internal/workload"
)

// ThreadsPerConsumer is the maximum number of workers a single consumer
// fans in before the controller must spin up another consumer (spec §4.3).
const ThreadsPerConsumer = 10

// scaleDownFactor, multiplied by ThreadsPerConsumer, bounds how many receive
// attempts (each yielding one incoming sample or a 10ms timeout) a consumer
// makes before forwarding whatever it has accumulated: at most 100 samples
// per forward, and roughly one forward per second when the consumer is idle.
const scaleDownFactor = 10

// Consumer fans in ParallelSample output from up to ThreadsPerConsumer
// workers, coalescing them into a single ParallelSamples batch before
// forwarding it upstream. This second fan-in level keeps the controller's
// single receive loop from falling behind once worker counts climb into the
// hundreds (spec §4.3).
type Consumer struct {
	id         int
	cancel     *cancelFlag
	in         chan ParallelSample
	out        chan<- *ParallelSamples
	numWorkers int
}

// NewConsumer starts a consumer's coalescing goroutine and returns it ready
// to accept workers via Scaleup.
func NewConsumer(ctx context.Context, id int, cancel *cancelFlag, out chan<- *ParallelSamples) *Consumer {
	c := &Consumer{
		id:     id,
		cancel: cancel,
		in:     make(chan ParallelSample, ThreadsPerConsumer*scaleDownFactor),
		out:    out,
	}
	go c.run(ctx)
	return c
}

func (c *Consumer) run(ctx context.Context) {
	wait := 10 * time.Millisecond
	batch := NewParallelSamples()
	for {
		if ctx.Err() != nil || c.cancel.get() {
			return
		}
		for i := 0; i < ThreadsPerConsumer*scaleDownFactor; i++ {
			select {
			case sample := <-c.in:
				batch.Add(sample)
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}
		if batch.Len() > 0 {
			c.out <- batch
			batch = NewParallelSamples()
		}
	}
}

// Scaleup starts workers filling this consumer's remaining capacity, up to
// ThreadsPerConsumer, and returns how many requested workers did not fit
// (the controller's caller is responsible for routing the leftover to the
// next consumer).
func (c *Consumer) Scaleup(ctx context.Context, extra int, w workload.Workload, nextWorkerID func() int, dial func(context.Context) (pgclient.Client, error)) int {
	leftover := c.numWorkers + extra - ThreadsPerConsumer
	if leftover < 0 {
		leftover = 0
	}
	toStart := extra - leftover

	for i := 0; i < toStart; i++ {
		id := nextWorkerID()
		clone := w.Clone()
		var worker *Worker
		if dial != nil {
			worker = NewWorkerWithDialer(id, clone, c.cancel, c.in, dial)
		} else {
			worker = NewWorker(id, clone, c.cancel, c.in)
		}
		go worker.Run(ctx)
		time.Sleep(10 * time.Millisecond)
	}
	c.numWorkers += toStart
	return leftover
}

// NumWorkers reports how many workers this consumer currently feeds.
func (c *Consumer) NumWorkers() int {
	return c.numWorkers
}
