package metrics

import "time"

// Config holds configuration for the hit reporter.
type Config struct {
	// Enabled turns on the periodic report.
	Enabled bool `mapstructure:"enabled" default:"false" env:"ENABLE_METRICS"`
	// Interval is how often the report is logged.
	Interval time.Duration `mapstructure:"interval" default:"15m"`
	// Window is the trailing period the report counts hits over.
	Window time.Duration `mapstructure:"window" default:"1h"`
}
