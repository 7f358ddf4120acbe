// Package config resolves pgtps's flags against their environment-variable
// fallbacks and parses them into the typed values the rest of the program
// needs (spec §6). Every flag except --debug has a single named environment
// variable; this table doesn't fit viper's auto-uppercased-prefix model, so
// flags are bound by hand instead.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Config is the fully resolved set of probe parameters.
type Config struct {
	Dsn           string
	Query         string
	Prepared      bool
	Transactional bool
	MinThreads    int
	MaxThreads    int
	Spread        float64
	MinSamples    int
	MaxWait       time.Duration
	LogFile       string
	Debug         bool
}

const defaultQuery = "select * from pg_tables"

// envFallback returns the flag's value if it was explicitly set, otherwise
// the named environment variable, otherwise the flag's own default.
func envFallback(cmd *cobra.Command, flagName, envVar string) string {
	flag := cmd.Flags().Lookup(flagName)
	if flag != nil && flag.Changed {
		return flag.Value.String()
	}
	if v, ok := os.LookupEnv(envVar); ok && v != "" {
		return v
	}
	if flag != nil {
		return flag.Value.String()
	}
	return ""
}

// BindFlags registers every flag pgtps accepts on cmd.
func BindFlags(cmd *cobra.Command) {
	cmd.Flags().String("dsn", "", "space-separated key=value Postgres connection string")
	cmd.Flags().String("query", defaultQuery, "work query; may be empty for transactional flavors")
	cmd.Flags().Bool("prepared", false, "use prepared statements")
	cmd.Flags().Bool("transactional", false, "wrap each unit in begin/commit")
	cmd.Flags().String("range", "1:1000", "inclusive min:max worker counts")
	cmd.Flags().Float64("spread", 10.0, "maximum allowed relative stddev (percent)")
	cmd.Flags().Int("min-samples", 10, "window length required before stability may be declared")
	cmd.Flags().String("max-wait", "10s", "per-level deadline, as a duration string")
	cmd.Flags().String("log-file", "", "write structured logs to this path instead of stderr")
	cmd.Flags().Bool("debug", false, "enable debug logging")
}

// FromFlags resolves Config from cmd's flags, falling back to the
// environment variables in spec §6 and finally to each flag's default.
func FromFlags(cmd *cobra.Command) (Config, error) {
	rangeStr := envFallback(cmd, "range", "PGTPSRANGE")
	minThreads, maxThreads, err := ParseRange(rangeStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: --range: %w", err)
	}

	spreadStr := envFallback(cmd, "spread", "PGTPSSPREAD")
	spread, err := strconv.ParseFloat(spreadStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("config: --spread: %w", err)
	}

	minSamplesStr := envFallback(cmd, "min-samples", "PGTPSMINSAMPLES")
	minSamples, err := strconv.Atoi(minSamplesStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: --min-samples: %w", err)
	}

	maxWaitStr := envFallback(cmd, "max-wait", "PGTPSMAXWAIT")
	maxWait, err := time.ParseDuration(maxWaitStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: --max-wait: %w", err)
	}

	prepared := envFallback(cmd, "prepared", "PGTPSPREPARED") == "true"
	transactional := envFallback(cmd, "transactional", "PGTPSTRANSACTIONAL") == "true"
	debug, _ := cmd.Flags().GetBool("debug")

	return Config{
		Dsn:           envFallback(cmd, "dsn", "PGTPSSOURCE"),
		Query:         envFallback(cmd, "query", "PGTPSQUERY"),
		Prepared:      prepared,
		Transactional: transactional,
		MinThreads:    minThreads,
		MaxThreads:    maxThreads,
		Spread:        spread,
		MinSamples:    minSamples,
		MaxWait:       maxWait,
		LogFile:       envFallback(cmd, "log-file", "PGTPSLOGFILE"),
		Debug:         debug,
	}, nil
}

// ParseRange parses the --range flag: "" -> (1,1000); "n" -> (1,n);
// "a:b" -> (a,b); trailing separators and extra fields are tolerated (spec §8
// boundary: "20:200:" -> (20,200)).
func ParseRange(raw string) (min, max int, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, 1000, nil
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ':' })
	switch len(fields) {
	case 0:
		return 1, 1000, nil
	case 1:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid integer %q", fields[0])
		}
		return 1, n, nil
	default:
		lo, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid integer %q", fields[0])
		}
		hi, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid integer %q", fields[1])
		}
		return lo, hi, nil
	}
}
