// Package config turns CLI flags and an optional config file into a
// validated Config, per spec.md §6 and SPEC_FULL.md §8. There is no
// direct teacher analogue (the teacher reads ad hoc query params in
// stats.go's uploadStatsHandler); this generalizes NethermindEth-juno's
// cli/cmd/root.go viper+cobra binding pattern to a config file layered
// under explicit flags.
package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/whispr-dev/caca/internal/apperr"
	"github.com/whispr-dev/caca/internal/ca"
	"github.com/whispr-dev/caca/internal/nist"
)

// Config is the fully-resolved, validated run configuration.
type Config struct {
	InputPath    string
	Rule         ca.Rule
	Neighborhood ca.Neighborhood
	Iterations   uint
	Width        uint
	Threads      int
	Alpha        float64
	Tests        []string
	Report       string
	ReportFormat string
	LogLevel     string
}

// BindFlags registers every flag spec.md §6 / SPEC_FULL.md §8 defines
// onto flags, with the defaults viper falls back to when neither a flag
// nor a config file sets a value.
func BindFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "path to the input file to analyze")
	flags.String("rule", "30", "CA rule: 30|82|110|150|custom:<u8>")
	flags.String("neighborhood", "1d", "CA neighborhood: 1d|von-neumann|moore")
	flags.Uint("iterations", 1, "number of CA iterations to run")
	flags.Uint("width", 0, "2-D grid width (0 = auto, floor(sqrt(n)))")
	flags.Int("threads", 0, "worker count (0 = hardware concurrency)")
	flags.Float64("alpha", 0.01, "significance level for pass/fail verdicts")
	flags.StringSlice("tests", nist.Names(), "NIST tests to run")
	flags.String("report", "", "path to write the structured report (empty = none)")
	flags.String("report-format", "jsonl", "structured report encoding: jsonl|yaml")
	flags.String("log-level", "info", "zap log level: debug|info|warn|error")
	flags.String("config", "", "optional config file; flags override file values")
}

// Load resolves a Config from flags, layered over an optional config
// file named by the "config" flag. Flags win over the file; the file
// wins over the built-in defaults BindFlags registered — the same
// precedence NethermindEth-juno's config loading uses.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, apperr.Wrap(apperr.ConfigError, err)
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperr.Wrap(apperr.ConfigError, err)
		}
	}

	rule, err := ca.ParseRule(v.GetString("rule"))
	if err != nil {
		return nil, apperr.Wrap(apperr.ConfigError, err)
	}
	neighborhood, err := ca.ParseNeighborhood(v.GetString("neighborhood"))
	if err != nil {
		return nil, apperr.Wrap(apperr.ConfigError, err)
	}

	tests := v.GetStringSlice("tests")
	if len(tests) == 1 && tests[0] == "all" {
		tests = nist.Names()
	}

	cfg := &Config{
		InputPath:    v.GetString("input"),
		Rule:         rule,
		Neighborhood: neighborhood,
		Iterations:   v.GetUint("iterations"),
		Width:        v.GetUint("width"),
		Threads:      v.GetInt("threads"),
		Alpha:        v.GetFloat64("alpha"),
		Tests:        tests,
		Report:       v.GetString("report"),
		ReportFormat: v.GetString("report-format"),
		LogLevel:     v.GetString("log-level"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field spec.md §7 requires a ConfigError for:
// an out-of-range alpha, an unknown test name, a missing input path, or
// an unsupported report format.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return apperr.New(apperr.ConfigError, "--input is required")
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return apperr.Newf(apperr.ConfigError, "--alpha must be in (0,1), got %v", c.Alpha)
	}
	if len(c.Tests) == 0 {
		return apperr.New(apperr.ConfigError, "--tests must name at least one test")
	}
	for _, name := range c.Tests {
		if _, ok := nist.Lookup(name); !ok {
			return apperr.Newf(apperr.ConfigError, "unknown test %q", name)
		}
	}
	switch c.ReportFormat {
	case "jsonl", "yaml":
	default:
		return apperr.Newf(apperr.ConfigError, "--report-format must be jsonl or yaml, got %q", c.ReportFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return apperr.Newf(apperr.ConfigError, "--log-level must be debug|info|warn|error, got %q", c.LogLevel)
	}
	return nil
}
