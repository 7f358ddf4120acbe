package probe

import (
	"context"
	"time"

	"github.com/willibrandon/pgtps/internal/pgclient"
)

// fakeClient is a stub pgclient.Client that sleeps for a configured latency
// on every call instead of talking to a real Postgres server, letting the
// controller/worker/consumer pipeline be exercised deterministically (spec
// §8 end-to-end scenarios).
type fakeClient struct {
	latency func() time.Duration
}

func newFakeClient(latency time.Duration) *fakeClient {
	return &fakeClient{latency: func() time.Duration { return latency }}
}

func (f *fakeClient) sleep() {
	if d := f.latency(); d > 0 {
		time.Sleep(d)
	}
}

func (f *fakeClient) Exec(ctx context.Context, sql string, args ...any) error {
	f.sleep()
	return nil
}

func (f *fakeClient) Prepare(ctx context.Context, name, sql string) (*pgclient.Statement, error) {
	return &pgclient.Statement{Name: name}, nil
}

func (f *fakeClient) QueryPrepared(ctx context.Context, stmt *pgclient.Statement, args ...any) (pgclient.Rows, error) {
	f.sleep()
	return &fakeRows{}, nil
}

func (f *fakeClient) Query(ctx context.Context, sql string, args ...any) (pgclient.Rows, error) {
	f.sleep()
	return &fakeRows{}, nil
}

func (f *fakeClient) QueryRow(ctx context.Context, sql string, args ...any) pgclient.Row {
	f.sleep()
	return &fakeRow{}
}

func (f *fakeClient) Begin(ctx context.Context) (pgclient.Tx, error) {
	return &fakeTx{client: f}, nil
}

func (f *fakeClient) Close(ctx context.Context) error {
	return nil
}

type fakeRows struct{}

func (r *fakeRows) Next() bool      { return false }
func (r *fakeRows) Scan(...any) error { return nil }
func (r *fakeRows) Err() error       { return nil }
func (r *fakeRows) Close()           {}

type fakeRow struct{}

func (r *fakeRow) Scan(...any) error { return nil }

type fakeTx struct {
	client *fakeClient
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) error {
	t.client.sleep()
	return nil
}

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgclient.Statement, error) {
	return &pgclient.Statement{Name: name}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgclient.Rows, error) {
	t.client.sleep()
	return &fakeRows{}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error   { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { return nil }
