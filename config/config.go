// Package config loads and persists redistrict settings.
//
// Values come from, in increasing priority: built-in defaults, a TOML file,
// and REDISTRICT_* environment variables (dots in keys become underscores,
// e.g. REDISTRICT_MASK_SOURCE). The file is taken from the explicit path,
// else $REDISTRICT_CONFIG, else ~/.config/redistrict/config.toml; a missing
// default file is not an error.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/katalvlaran/redistrict/guard"
	"github.com/katalvlaran/redistrict/metric"
)

// ErrInvalidConfig is returned by Validate for values that cannot be used.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config holds every tunable of a relaxation session.
type Config struct {
	Districts  int           `mapstructure:"districts"`
	Metric     string        `mapstructure:"metric"`
	Policy     string        `mapstructure:"policy"`
	Randomness float64       `mapstructure:"randomness"`
	Iterations int           `mapstructure:"iterations"`
	TimeLimit  time.Duration `mapstructure:"time_limit"`
	Seed       int64         `mapstructure:"seed"`

	Mask    MaskConfig    `mapstructure:"mask"`
	Output  OutputConfig  `mapstructure:"output"`
	Store   StoreConfig   `mapstructure:"store"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MaskConfig selects the map the districts are drawn on.
type MaskConfig struct {
	Source    string `mapstructure:"source"`
	Threshold int    `mapstructure:"threshold"`
	Width     int    `mapstructure:"width"`
}

// OutputConfig controls image export.
type OutputConfig struct {
	Path  string `mapstructure:"path"`
	Scale int    `mapstructure:"scale"`
}

// StoreConfig holds the run history database location.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig holds the Prometheus listen address; empty disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Districts:  16,
		Metric:     metric.Chebyshev.String(),
		Policy:     guard.NoChecks.String(),
		Randomness: 0,
		Iterations: 100000,
		TimeLimit:  30 * time.Millisecond,
		Seed:       1234,
		Mask: MaskConfig{
			Source:    "builtin:star",
			Threshold: 10,
			Width:     0,
		},
		Output: OutputConfig{
			Path:  "redistrict.png",
			Scale: 1,
		},
		Store: StoreConfig{
			Path: filepath.Join(os.Getenv("HOME"), ".local", "share", "redistrict", "runs.db"),
		},
	}
}

// DefaultPath returns the config file used when neither an explicit path nor
// $REDISTRICT_CONFIG is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "redistrict", "config.toml")
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("districts", d.Districts)
	v.SetDefault("metric", d.Metric)
	v.SetDefault("policy", d.Policy)
	v.SetDefault("randomness", d.Randomness)
	v.SetDefault("iterations", d.Iterations)
	v.SetDefault("time_limit", d.TimeLimit)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("mask.source", d.Mask.Source)
	v.SetDefault("mask.threshold", d.Mask.Threshold)
	v.SetDefault("mask.width", d.Mask.Width)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.scale", d.Output.Scale)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Load reads configuration from path (or the default locations when empty)
// and the environment, then validates it.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	explicit := path != ""
	if !explicit {
		path = os.Getenv("REDISTRICT_CONFIG")
		explicit = path != ""
	}
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("REDISTRICT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return Validate(c)
}

// Validate normalises c and reports unusable values. Districts below 1 are
// clamped to 1; unknown metric or policy names, randomness outside [0,1] and
// negative budgets wrap ErrInvalidConfig. Names are rewritten to canonical form.
func Validate(c Config) (Config, error) {
	if c.Districts < 1 {
		c.Districts = 1
	}
	m, err := metric.Parse(c.Metric)
	if err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Metric = m.String()
	p, err := guard.Parse(c.Policy)
	if err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Policy = p.String()

	switch {
	case math.IsNaN(c.Randomness) || c.Randomness < 0 || c.Randomness > 1:
		return c, fmt.Errorf("%w: randomness %v outside [0,1]", ErrInvalidConfig, c.Randomness)
	case c.Iterations < 0:
		return c, fmt.Errorf("%w: iterations %d is negative", ErrInvalidConfig, c.Iterations)
	case c.TimeLimit < 0:
		return c, fmt.Errorf("%w: time_limit %v is negative", ErrInvalidConfig, c.TimeLimit)
	case c.Mask.Threshold < 0 || c.Mask.Threshold > 255:
		return c, fmt.Errorf("%w: mask.threshold %d outside [0,255]", ErrInvalidConfig, c.Mask.Threshold)
	case c.Mask.Width < 0:
		return c, fmt.Errorf("%w: mask.width %d is negative", ErrInvalidConfig, c.Mask.Width)
	}
	if c.Output.Scale < 1 {
		c.Output.Scale = 1
	}

	return c, nil
}

// MetricValue returns the parsed metric.
func (c Config) MetricValue() (metric.Metric, error) { return metric.Parse(c.Metric) }

// PolicyValue returns the parsed policy.
func (c Config) PolicyValue() (guard.Policy, error) { return guard.Parse(c.Policy) }

// Save writes cfg as TOML to path (DefaultPath when empty), creating the
// directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("districts", cfg.Districts)
	v.Set("metric", cfg.Metric)
	v.Set("policy", cfg.Policy)
	v.Set("randomness", cfg.Randomness)
	v.Set("iterations", cfg.Iterations)
	v.Set("time_limit", cfg.TimeLimit.String())
	v.Set("seed", cfg.Seed)
	v.Set("mask.source", cfg.Mask.Source)
	v.Set("mask.threshold", cfg.Mask.Threshold)
	v.Set("mask.width", cfg.Mask.Width)
	v.Set("output.path", cfg.Output.Path)
	v.Set("output.scale", cfg.Output.Scale)
	v.Set("store.path", cfg.Store.Path)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
