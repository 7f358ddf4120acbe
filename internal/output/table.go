// Package output prints the probe's fixed-column ASCII result table (spec §6).
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

const headerLine1 = "Date       Time                |  Clients |          TPS |   Latency (us) |  TPS/Latency |  Server TPS |   Server WAL (kB/s)"
const headerLine2 = "--------------------------------|----------|--------------|-----------------|---------------|-------------|---------------------"

// unstableMarker prefixes best-effort rows that never reached the stability
// threshold before their deadline (spec §4.6, §6).
var unstableMarker = color.New(color.FgYellow).SprintFunc()

// missingMarker prefixes the terminal "?" row printed when wait_stable
// produced nothing at all.
var missingMarker = color.New(color.FgRed).SprintFunc()

// Table writes the header once and one row per concurrency level.
type Table struct {
	w io.Writer
}

// New returns a Table writing to w and immediately writes the header.
func New(w io.Writer) *Table {
	t := &Table{w: w}
	fmt.Fprintln(t.w, headerLine1)
	fmt.Fprintln(t.w, headerLine2)
	return t
}

// Row prints one concurrency level's verdict. clients is the worker count
// at this level, tps/latency/serverTPS/serverWal are this level's computed
// values, and stable reports whether wait_stable converged before its
// deadline.
func (t *Table) Row(when time.Time, clients int, tps float64, latency time.Duration, serverTPS, serverWalBytesPerSec float64, stable bool) {
	marker := " "
	if !stable {
		marker = unstableMarker("*")
	}
	ratio := 0.0
	latencyUs := float64(latency.Microseconds())
	if latencyUs > 0 {
		ratio = tps / latencyUs
	}

	fmt.Fprintf(t.w, "%s%s %8d | %12s | %15s | %13.4f | %11s | %19s\n",
		marker,
		when.Format("2006-01-02 15:04:05.000"),
		clients,
		humanize.CommafWithDigits(tps, 1),
		humanize.CommafWithDigits(latencyUs, 1),
		ratio,
		humanize.CommafWithDigits(serverTPS, 1),
		humanize.CommafWithDigits(serverWalBytesPerSec/1024, 1),
	)
}

// MissingRow prints the terminal "?" placeholder row emitted when
// wait_stable returns nothing for a level, and the scan stops.
func (t *Table) MissingRow(when time.Time, clients int) {
	fmt.Fprintf(t.w, "%s%s %8d | %12s | %15s | %13s | %11s | %19s\n",
		missingMarker("?"),
		when.Format("2006-01-02 15:04:05.000"),
		clients,
		"?", "?", "?", "?", "?",
	)
}
