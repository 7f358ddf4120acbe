package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/willibrandon/pgtps/internal/logger"
	"github.com/willibrandon/pgtps/internal/pgclient"
	"github.com/willibrandon/pgtps/internal/workload"
)

// tableName is the shared scratch table every worker writes against when no
// query is configured (spec §4.2).
const tableName = "pgtps_probe"

// cancelFlag is a single shared stop signal, written exactly once by the
// controller at shutdown and read by every worker on each loop iteration
// (spec §3 concurrency model: one writer, many readers, no per-read lock
// contention beyond the RWMutex itself).
type cancelFlag struct {
	mu   sync.RWMutex
	done bool
}

func (c *cancelFlag) set() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
}

func (c *cancelFlag) get() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.done
}

// Worker repeatedly measures a burst of transactions against one exclusive
// connection, reporting each burst upstream as a ParallelSample and using
// its own observed rate to size the next burst (spec §4.2).
type Worker struct {
	id       int
	workload workload.Workload
	cancel   *cancelFlag
	out      chan<- ParallelSample
	dial     func(context.Context) (pgclient.Client, error)
}

// NewWorker constructs a worker. id 0 is distinguished only by printing the
// workload banner and truncating the shared table once at startup.
func NewWorker(id int, w workload.Workload, cancel *cancelFlag, out chan<- ParallelSample) *Worker {
	return &Worker{id: id, workload: w, cancel: cancel, out: out, dial: w.Client}
}

// NewWorkerWithDialer is NewWorker with an overridden connection factory, so
// tests can drive the worker loop against a stub client instead of pgx.
func NewWorkerWithDialer(id int, w workload.Workload, cancel *cancelFlag, out chan<- ParallelSample, dial func(context.Context) (pgclient.Client, error)) *Worker {
	return &Worker{id: id, workload: w, cancel: cancel, out: out, dial: dial}
}

// initialize acquires this worker's connection and, for the default query-less
// workload, ensures the shared scratch table exists, is truncated once by
// worker 0, and carries this worker's own row.
func (w *Worker) initialize(ctx context.Context) (pgclient.Client, error) {
	client, err := w.dial(ctx)
	if err != nil {
		return nil, err
	}
	if w.workload.Query() != "" {
		return client, nil
	}
	if err := client.Exec(ctx, fmt.Sprintf("create table if not exists %s (id oid)", tableName)); err != nil {
		return nil, err
	}
	if w.id == 0 {
		if err := client.Exec(ctx, fmt.Sprintf("truncate table %s", tableName)); err != nil {
			return nil, err
		}
	}
	if err := client.Exec(ctx, fmt.Sprintf("insert into %s values($1)", tableName), w.id); err != nil {
		return nil, err
	}
	return client, nil
}

// Run executes the worker loop until ctx is cancelled or cancel is set. It
// never returns an error: connection failures are logged once per outage and
// retried, matching the original implementation's "reconnect forever"
// philosophy (spec §4.2 step 6).
func (w *Worker) Run(ctx context.Context) {
	if w.id == 0 {
		logger.Info("worker 0 workload", "workload", w.workload.String())
	}

	client, _ := w.reconnect(ctx, nil)
	if client == nil {
		return
	}
	defer client.Close(ctx)

	tpsEstimate := 1000.0

	for {
		if ctx.Err() != nil || w.cancel.get() {
			return
		}

		sample, sampleErr := w.runBurst(ctx, client, tpsEstimate)
		if sampleErr != nil {
			_ = client.Close(ctx)
			client, _ = w.reconnect(ctx, sampleErr)
			if client == nil {
				return
			}
			continue
		}

		w.out <- sample.ToParallelSample()
		tpsEstimate = sample.TPS()
	}
}

// reconnect retries initialize until it succeeds or the worker is told to
// stop, logging the burst's first failure at Warn and every subsequent
// attempt in the same burst at Debug (spec §1.1). cause is the error that
// triggered the reconnect, or nil when called from startup. A nil client
// return means the worker was cancelled mid-retry.
func (w *Worker) reconnect(ctx context.Context, cause error) (pgclient.Client, error) {
	if cause != nil {
		logger.Warn("worker lost connection, reconnecting", "worker", w.id, "error", cause)
		time.Sleep(100 * time.Millisecond)
	}

	client, err := w.initialize(ctx)
	warned := cause != nil
	for err != nil {
		if !warned {
			logger.Warn("worker failed to connect, retrying", "worker", w.id, "error", err)
			warned = true
		} else {
			logger.Debug("worker still reconnecting", "worker", w.id, "error", err)
		}
		if ctx.Err() != nil || w.cancel.get() {
			return nil, err
		}
		time.Sleep(100 * time.Millisecond)
		client, err = w.initialize(ctx)
	}
	return client, nil
}

// runBurst runs max(1, tpsEstimate/10) transactions, sized so each burst
// targets roughly a tenth of a second at the worker's last observed rate
// (spec §4.2 step 4).
func (w *Worker) runBurst(ctx context.Context, client pgclient.Client, tpsEstimate float64) (*Sample, error) {
	n := uint64(tpsEstimate / 10)
	if n < 1 {
		n = 1
	}

	sample := NewSample()
	query := w.workload.Query()
	if query == "" {
		query = fmt.Sprintf("update %s set id=$1 where id=$1", tableName)
	}

	for i := uint64(0); i < n; i++ {
		start := time.Now()
		if err := w.execOne(ctx, client, query); err != nil {
			return nil, err
		}
		sample.Increment(time.Since(start))
	}
	sample.End()
	return sample, nil
}

// execOne runs a single transaction in whichever of the four flavors the
// workload selects (spec §4.2 step 2).
func (w *Worker) execOne(ctx context.Context, client pgclient.Client, query string) error {
	switch w.workload.Type() {
	case workload.Prepared:
		stmt, err := client.Prepare(ctx, "", query)
		if err != nil {
			return err
		}
		rows, err := client.QueryPrepared(ctx, stmt, w.id)
		if err != nil {
			return err
		}
		rows.Close()
		return rows.Err()

	case workload.Transactional:
		tx, err := client.Begin(ctx)
		if err != nil {
			return err
		}
		if err := tx.Exec(ctx, query, w.id); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		return tx.Commit(ctx)

	case workload.PreparedTransactional:
		tx, err := client.Begin(ctx)
		if err != nil {
			return err
		}
		stmt, err := tx.Prepare(ctx, "", query)
		if err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		rows, err := tx.Query(ctx, stmt.Name, w.id)
		if err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		return tx.Commit(ctx)

	default:
		return client.Exec(ctx, query, w.id)
	}
}
