package output_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/willibrandon/pgtps/internal/output"
)

func TestNewWritesHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	output.New(&buf)
	assert.Contains(t, buf.String(), "Clients")
	assert.Contains(t, buf.String(), "TPS")
}

func TestRowMarksUnstableWithAsterisk(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	table := output.New(&buf)
	buf.Reset()

	table.Row(time.Now(), 3, 3000, time.Millisecond, 2900, 1024, false)
	assert.Contains(t, buf.String(), "*")
}

func TestRowOmitsMarkerWhenStable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	table := output.New(&buf)
	buf.Reset()

	table.Row(time.Now(), 3, 3000, time.Millisecond, 2900, 1024, true)
	assert.NotContains(t, buf.String(), "*")
}

func TestMissingRowUsesQuestionMark(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	table := output.New(&buf)
	buf.Reset()

	table.MissingRow(time.Now(), 50)
	assert.Contains(t, buf.String(), "?")
}
