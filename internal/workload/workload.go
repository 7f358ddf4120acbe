// Package workload describes the unit of work every probe worker repeats:
// the target connection, the statement to run, and how to run it.
package workload

import (
	"context"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/willibrandon/pgtps/internal/dsn"
	"github.com/willibrandon/pgtps/internal/pgclient"
)

// Type selects one of the four statement-execution flavors spec §4.2 names.
type Type int

const (
	Default Type = iota
	Transactional
	Prepared
	PreparedTransactional
)

// Workload is immutable after construction and safely duplicable per worker
// (spec §3): every worker clones it, never mutates the original.
type Workload struct {
	dsn           dsn.Dsn
	query         string
	transactional bool
	prepared      bool
}

// New builds a Workload. If query is non-empty it must parse as valid SQL;
// this is a fail-fast enrichment over the original implementation, which
// only discovered a malformed query at the first execution.
func New(d dsn.Dsn, query string, transactional, prepared bool) (Workload, error) {
	if q := strings.TrimSpace(query); q != "" {
		if _, err := pg_query.Parse(q); err != nil {
			return Workload{}, fmt.Errorf("workload: invalid query %q: %w", query, err)
		}
	}
	return Workload{
		dsn:           d,
		query:         query,
		transactional: transactional,
		prepared:      prepared,
	}, nil
}

// Clone returns an independent copy, safe to hand to another worker.
func (w Workload) Clone() Workload {
	return Workload{
		dsn:           w.dsn.Clone(),
		query:         w.query,
		transactional: w.transactional,
		prepared:      w.prepared,
	}
}

// Query returns the configured query, possibly empty.
func (w Workload) Query() string {
	return w.query
}

// Type reports which of the four execution flavors this workload uses.
func (w Workload) Type() Type {
	switch {
	case w.transactional && w.prepared:
		return PreparedTransactional
	case w.transactional:
		return Transactional
	case w.prepared:
		return Prepared
	default:
		return Default
	}
}

// String renders the workload for the worker-0 startup banner (spec SPEC_FULL §3),
// with TLS material stripped from the DSN before it is ever logged.
func (w Workload) String() string {
	return fmt.Sprintf("dsn: %s\nquery: %q\ntransactional: %t\nprepared: %t",
		w.dsn.Cleanse().String(), w.query, w.transactional, w.prepared)
}

// Client acquires a fresh exclusive connection for this workload's DSN.
func (w Workload) Client(ctx context.Context) (pgclient.Client, error) {
	return pgclient.Connect(ctx, w.dsn.String())
}
