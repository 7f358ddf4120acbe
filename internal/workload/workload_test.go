package workload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/pgtps/internal/dsn"
	"github.com/willibrandon/pgtps/internal/workload"
)

func TestNewRejectsInvalidQuery(t *testing.T) {
	t.Parallel()

	_, err := workload.New(dsn.Parse(""), "this is not sql (((", false, false)
	assert.Error(t, err)
}

func TestNewAcceptsValidQuery(t *testing.T) {
	t.Parallel()

	w, err := workload.New(dsn.Parse(""), "select 1", false, false)
	require.NoError(t, err)
	assert.Equal(t, "select 1", w.Query())
}

func TestTypeSelectsCorrectFlavor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		transactional bool
		prepared      bool
		want          workload.Type
	}{
		{"default", false, false, workload.Default},
		{"transactional", true, false, workload.Transactional},
		{"prepared", false, true, workload.Prepared},
		{"prepared transactional", true, true, workload.PreparedTransactional},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := workload.New(dsn.Parse(""), "", tc.transactional, tc.prepared)
			require.NoError(t, err)
			assert.Equal(t, tc.want, w.Type())
		})
	}
}

func TestStringCleansesDSN(t *testing.T) {
	t.Parallel()

	w, err := workload.New(dsn.Parse("host=localhost sslmode=verify-full"), "", false, false)
	require.NoError(t, err)
	assert.NotContains(t, w.String(), "sslmode")
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	t.Parallel()

	w, err := workload.New(dsn.Parse("host=localhost"), "select 1", true, true)
	require.NoError(t, err)
	clone := w.Clone()
	assert.Equal(t, w.Query(), clone.Query())
	assert.Equal(t, w.Type(), clone.Type())
}
