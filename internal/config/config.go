package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/retailstar/internal/quality"
)

// EnvPrefix prefixes environment overrides, e.g. RETAILSTAR_QUALITY_AGE_MAX.
const EnvPrefix = "RETAILSTAR"

// Config represents the top-level retailstar.yaml configuration.
type Config struct {
	Quality QualityConfig `yaml:"quality" mapstructure:"quality"`
	Paths   PathsConfig   `yaml:"paths"   mapstructure:"paths"`
	Sink    SinkConfig    `yaml:"sink"    mapstructure:"sink"`
	Log     LogConfig     `yaml:"log"     mapstructure:"log"`
	Jobs    int           `yaml:"jobs"    mapstructure:"jobs"` // enrichment workers; <= 1 runs inline
}

// QualityConfig holds the rule thresholds.
type QualityConfig struct {
	AgeMin          int    `yaml:"age_min"          mapstructure:"age_min"`
	AgeMax          int    `yaml:"age_max"          mapstructure:"age_max"`
	AmountTolerance string `yaml:"amount_tolerance" mapstructure:"amount_tolerance"` // decimal string
}

// PathsConfig locates the file inputs and outputs.
type PathsConfig struct {
	Raw      string `yaml:"raw"      mapstructure:"raw"`
	Clean    string `yaml:"clean"    mapstructure:"clean"`
	Rejected string `yaml:"rejected" mapstructure:"rejected"`
	RunLog   string `yaml:"run_log"  mapstructure:"run_log"`
}

// SinkConfig selects where the star schema is written.
type SinkConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // csv, sqlite or postgres
	Target string `yaml:"target" mapstructure:"target"` // directory for csv, DSN otherwise
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"  mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// Default returns a Config with the stock thresholds and file layout.
func Default() *Config {
	q := quality.DefaultConfig()
	return &Config{
		Quality: QualityConfig{
			AgeMin:          q.AgeMin,
			AgeMax:          q.AgeMax,
			AmountTolerance: q.AmountTolerance.String(),
		},
		Paths: PathsConfig{
			Raw:      "data/raw/sales.csv",
			Clean:    "data/processed/sales_clean.csv",
			Rejected: "data/processed/sales_rejected.csv",
			RunLog:   "logs/run-log.csv",
		},
		Sink: SinkConfig{
			Driver: "sqlite",
			Target: "data/warehouse/retail_dw.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Jobs: 4,
	}
}

// Load reads a retailstar.yaml file. Values missing from the file keep their
// defaults, and RETAILSTAR_* environment variables override both. An empty
// path loads defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to see it during Unmarshal.
	d := Default()
	v.SetDefault("quality.age_min", d.Quality.AgeMin)
	v.SetDefault("quality.age_max", d.Quality.AgeMax)
	v.SetDefault("quality.amount_tolerance", d.Quality.AmountTolerance)
	v.SetDefault("paths.raw", d.Paths.Raw)
	v.SetDefault("paths.clean", d.Paths.Clean)
	v.SetDefault("paths.rejected", d.Paths.Rejected)
	v.SetDefault("paths.run_log", d.Paths.RunLog)
	v.SetDefault("sink.driver", d.Sink.Driver)
	v.SetDefault("sink.target", d.Sink.Target)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("jobs", d.Jobs)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResolvePaths makes relative file paths relative to dir. A postgres sink
// target is a connection string and is left alone.
func (c *Config) ResolvePaths(dir string) {
	for _, p := range []*string{&c.Paths.Raw, &c.Paths.Clean, &c.Paths.Rejected, &c.Paths.RunLog} {
		*p = resolve(dir, *p)
	}
	if !strings.EqualFold(c.Sink.Driver, "postgres") {
		c.Sink.Target = resolve(dir, c.Sink.Target)
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks thresholds and the sink driver.
func (c *Config) Validate() error {
	q, err := c.QualityConfig()
	if err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Sink.Driver) {
	case "csv", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown sink driver %q", c.Sink.Driver)
	}
	return nil
}

// QualityConfig converts the quality section into engine thresholds.
func (c *Config) QualityConfig() (quality.Config, error) {
	tol := decimal.Zero
	if s := strings.TrimSpace(c.Quality.AmountTolerance); s != "" {
		var err error
		tol, err = decimal.NewFromString(s)
		if err != nil {
			return quality.Config{}, fmt.Errorf("parsing amount_tolerance %q: %w", s, err)
		}
	}
	return quality.Config{
		AgeMin:          c.Quality.AgeMin,
		AgeMax:          c.Quality.AgeMax,
		AmountTolerance: tol,
	}, nil
}
