// Package pgclient defines the minimal database-client surface the probe
// needs and a pgx/v5-backed implementation of it. Connection establishment,
// TLS wiring and the single/prepared/transactional execution primitives are
// collaborators of the probe, not part of it (spec §1): every worker and the
// server sampler talk to Postgres only through this interface, so tests can
// substitute a stub without a live database.
package pgclient

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Row is a single result row, matching pgx.Row.
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result-set cursor, matching the subset of pgx.Rows the probe uses.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Tx is an in-flight transaction.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Prepare(ctx context.Context, name, sql string) (*Statement, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Statement is a prepared statement handle, opaque to callers.
type Statement struct {
	Name string
}

// Client is one exclusive database connection, acquired for a connection
// string and held by exactly one worker (or the server sampler) for its
// lifetime.
type Client interface {
	// Exec runs a parameterized statement that returns no rows.
	Exec(ctx context.Context, sql string, args ...any) error
	// Prepare prepares a parameterized statement for repeated execution.
	Prepare(ctx context.Context, name, sql string) (*Statement, error)
	// QueryPrepared executes a previously prepared statement.
	QueryPrepared(ctx context.Context, stmt *Statement, args ...any) (Rows, error)
	// Query runs a parameterized statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	// QueryRow runs a parameterized statement expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) Row
	// Begin starts a transaction.
	Begin(ctx context.Context) (Tx, error)
	// Close releases the connection.
	Close(ctx context.Context) error
}

// Connect acquires a new exclusive client for the given libpq-style
// connection string. Each worker calls this once at startup and again on
// every reconnect (spec §4.2 step 6).
func Connect(ctx context.Context, connString string) (Client, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("pgclient: connect: %w", err)
	}
	return &pgxClient{conn: conn}, nil
}

type pgxClient struct {
	conn *pgx.Conn
}

func (c *pgxClient) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := c.conn.Exec(ctx, sql, args...)
	return err
}

func (c *pgxClient) Prepare(ctx context.Context, name, sql string) (*Statement, error) {
	desc, err := c.conn.Prepare(ctx, name, sql)
	if err != nil {
		return nil, err
	}
	return &Statement{Name: desc.Name}, nil
}

func (c *pgxClient) QueryPrepared(ctx context.Context, stmt *Statement, args ...any) (Rows, error) {
	rows, err := c.conn.Query(ctx, stmt.Name, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *pgxClient) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *pgxClient) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c *pgxClient) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: tx}, nil
}

func (c *pgxClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := t.tx.Exec(ctx, sql, args...)
	return err
}

func (t *pgxTx) Prepare(ctx context.Context, name, sql string) (*Statement, error) {
	desc, err := t.tx.Prepare(ctx, name, sql)
	if err != nil {
		return nil, err
	}
	return &Statement{Name: desc.Name}, nil
}

func (t *pgxTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
