// Package dsn parses and reassembles the libpq-style "key=value" connection
// strings pgtps accepts on --dsn/PGTPSSOURCE.
package dsn

import (
	"sort"
	"strings"
)

// sensitiveKeys are stripped by Cleanse before a DSN is ever logged.
var sensitiveKeys = []string{"sslmode", "sslcert", "sslkey", "sslrootcert", "sslcrl"}

// Dsn is an immutable set of libpq keyword/value pairs. It tolerates unknown
// keys (they are passed through to the driver unchanged) and recognizes the
// standard connection and TLS keys documented in spec §6.
type Dsn struct {
	kv map[string]string
}

// Parse splits a space-separated "key=value key2=value2" string into a Dsn.
// Malformed tokens (missing "=") are ignored rather than rejected, matching
// the tolerant parsing of the original implementation.
func Parse(from string) Dsn {
	kv := make(map[string]string)
	for _, tok := range strings.Fields(from) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		kv[key] = value
	}
	return Dsn{kv: kv}
}

// Clone returns an independent copy safe to hand to another worker.
func (d Dsn) Clone() Dsn {
	kv := make(map[string]string, len(d.kv))
	for k, v := range d.kv {
		kv[k] = v
	}
	return Dsn{kv: kv}
}

// Cleanse returns a copy with TLS material removed, safe to include in a log line.
func (d Dsn) Cleanse() Dsn {
	out := d.Clone()
	for _, key := range sensitiveKeys {
		delete(out.kv, key)
	}
	return out
}

// String reassembles the DSN in canonical "key=value" form, sorted by key so
// output is deterministic across runs (and in tests).
func (d Dsn) String() string {
	keys := make([]string, 0, len(d.kv))
	for k := range d.kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+d.kv[k])
	}
	return strings.Join(parts, " ")
}

// Get returns the value for key, or "" if unset.
func (d Dsn) Get(key string) string {
	return d.kv[key]
}
