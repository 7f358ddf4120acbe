// Package sampler queries the server side of the connection being probed:
// WAL throughput and the committed/rolled-back transaction counter, so the
// output table can show what Postgres itself reports alongside the
// client-observed TPS (spec §4.7, §6).
package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/willibrandon/pgtps/internal/pgclient"
)

const sampleQuery = `
select now()::timestamp as samplemoment,
       pg_current_wal_lsn()::text as lsn,
       (pg_current_wal_lsn() - $1::text::pg_lsn)::float8 as wal_bytes,
       (select sum(xact_commit + xact_rollback)::float8 from pg_stat_database) as transacts`

type reading struct {
	moment       time.Time
	lsn          string
	walBytes     float64
	transactions float64
}

// Sampler holds one exclusive connection and the previous/latest readings
// needed to compute rates between calls (spec: "log-sequence difference ->
// wal kB/s; committed-transaction counter difference -> server-side TPS").
type Sampler struct {
	client   pgclient.Client
	previous reading
	latest   reading
}

// New wraps client for sampling. The query is not prepared: each call to Next
// sends it as a plain parameterized query. The first call to Next uses
// "0/0" as the previous LSN, matching the original implementation's seed
// value.
func New(ctx context.Context, client pgclient.Client) (*Sampler, error) {
	return &Sampler{
		client:   client,
		previous: reading{lsn: "0/0"},
		latest:   reading{lsn: "0/0"},
	}, nil
}

// Next runs the sampler query and rotates latest into previous. A failure
// here is not tolerated mid-run: the caller should treat it as fatal (spec
// §7: "Server-side sampler query failure: propagate; not tolerated mid-run").
func (s *Sampler) Next(ctx context.Context) error {
	row := s.client.QueryRow(ctx, sampleQuery, s.latest.lsn)

	var r reading
	if err := row.Scan(&r.moment, &r.lsn, &r.walBytes, &r.transactions); err != nil {
		return fmt.Errorf("sampler: query: %w", err)
	}

	s.previous = s.latest
	s.latest = r
	return nil
}

func (s *Sampler) durationSeconds() float64 {
	d := s.latest.moment.Sub(s.previous.moment)
	if d <= 0 {
		return 0
	}
	return d.Seconds()
}

// WalPerSec is the server-observed WAL write rate in bytes/sec since the
// previous sample.
func (s *Sampler) WalPerSec() float64 {
	d := s.durationSeconds()
	if d == 0 {
		return 0
	}
	return s.latest.walBytes / d
}

// TPS is the server-observed committed+rolled-back transaction rate since
// the previous sample.
func (s *Sampler) TPS() float64 {
	d := s.durationSeconds()
	if d == 0 {
		return 0
	}
	return (s.latest.transactions - s.previous.transactions) / d
}

// Close releases the sampler's connection.
func (s *Sampler) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
