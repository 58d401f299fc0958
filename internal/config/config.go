// Package config defines process configuration structures and loading hooks.
//
// Conventions:
//   - New() returns a Config populated with defaults.
//   - Load(ctx) layers a YAML file and environment variables over New().
//   - Validate reports unusable settings as ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/adsim/internal/domain/formula"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding on stderr: text or json.
	LogFormat string `koanf:"log_format"`

	// Data names the competition source as kind:location.
	Data string `koanf:"data"`

	// Formula is a comma-separated list of formula names to run.
	Formula string `koanf:"formula"`

	// FromRound and ToRound bound the scored rounds (inclusive). Nil
	// selects the competition's first or last round.
	FromRound *int `koanf:"from_round"`
	ToRound   *int `koanf:"to_round"`

	// ScaleTo rescales the final scoreboard so the leader holds this total.
	// Nil disables scaling.
	ScaleTo *float64 `koanf:"scale_to"`

	// ScaleSeries applies the final scale factor to the per-round series too.
	ScaleSeries bool `koanf:"scale_series"`

	// OutputFormat selects the renderer: json or table.
	OutputFormat string `koanf:"output_format"`

	// Series includes the per-round time series in the output.
	Series bool `koanf:"series"`

	// Workers sets how many rounds are scored concurrently per formula.
	Workers int `koanf:"workers"`

	// MetricsFile, when set, receives the run metrics in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`

	// NOPTeam overrides the data source's NOP team.
	NOPTeam string `koanf:"nop_team"`

	// Formulas holds every formula's tunable constants.
	Formulas formula.Params `koanf:"formulas"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		OutputFormat: "table",
		Workers:      1,
		Formulas:     formula.DefaultParams(),
	}
}

// FormulaNames splits Formula into trimmed, non-empty names.
func (c *Config) FormulaNames() []string {
	var out []string
	for _, name := range strings.Split(c.Formula, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Validate checks that the configuration describes a runnable simulation.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Data) == "":
		return fmt.Errorf("%w: data must not be empty", ErrInvalidConfig)
	case len(c.FormulaNames()) == 0:
		return fmt.Errorf("%w: formula must not be empty", ErrInvalidConfig)
	case c.FromRound != nil && *c.FromRound < 0:
		return fmt.Errorf("%w: from_round %d is negative", ErrInvalidConfig, *c.FromRound)
	case c.ToRound != nil && *c.ToRound < 0:
		return fmt.Errorf("%w: to_round %d is negative", ErrInvalidConfig, *c.ToRound)
	case c.FromRound != nil && c.ToRound != nil && *c.FromRound > *c.ToRound:
		return fmt.Errorf("%w: from_round %d is after to_round %d", ErrInvalidConfig, *c.FromRound, *c.ToRound)
	case c.ScaleTo != nil && *c.ScaleTo < 0:
		return fmt.Errorf("%w: scale_to must not be negative", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.OutputFormat) {
	case "json", "table":
	default:
		return fmt.Errorf("%w: unknown output_format %q", ErrInvalidConfig, c.OutputFormat)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
