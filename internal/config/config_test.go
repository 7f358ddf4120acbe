package config_test

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/pgtps/internal/config"
)

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	config.BindFlags(cmd)
	return cmd
}

func TestParseRangeBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw      string
		min, max int
	}{
		{"", 1, 1000},
		{"50", 1, 50},
		{"20:200:", 20, 200},
		{"5:10", 5, 10},
	}

	for _, tc := range cases {
		min, max, err := config.ParseRange(tc.raw)
		require.NoError(t, err)
		assert.Equal(t, tc.min, min, tc.raw)
		assert.Equal(t, tc.max, max, tc.raw)
	}
}

func TestParseRangeRejectsNonInteger(t *testing.T) {
	t.Parallel()

	_, _, err := config.ParseRange("abc:10")
	assert.Error(t, err)
}

func TestFromFlagsUsesDefaults(t *testing.T) {
	cmd := newTestCmd()
	cfg, err := config.FromFlags(cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.MinThreads)
	assert.Equal(t, 1000, cfg.MaxThreads)
	assert.Equal(t, 10.0, cfg.Spread)
	assert.Equal(t, 10, cfg.MinSamples)
	assert.Equal(t, 10*time.Second, cfg.MaxWait)
	assert.False(t, cfg.Prepared)
	assert.False(t, cfg.Transactional)
}

func TestFromFlagsRespectsEnvFallback(t *testing.T) {
	t.Setenv("PGTPSSOURCE", "host=dbhost")
	t.Setenv("PGTPSSPREAD", "5")

	cmd := newTestCmd()
	cfg, err := config.FromFlags(cmd)
	require.NoError(t, err)

	assert.Equal(t, "host=dbhost", cfg.Dsn)
	assert.Equal(t, 5.0, cfg.Spread)
}

func TestFromFlagsExplicitFlagBeatsEnv(t *testing.T) {
	t.Setenv("PGTPSSPREAD", "5")

	cmd := newTestCmd()
	require.NoError(t, cmd.Flags().Set("spread", "20"))
	cfg, err := config.FromFlags(cmd)
	require.NoError(t, err)

	assert.Equal(t, 20.0, cfg.Spread)
}
