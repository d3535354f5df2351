// Package config loads the YAML configuration shared by the commands.
package config

import (
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	"github.com/neurlang/blobguess/classifier"
	"github.com/neurlang/blobguess/features"
	"github.com/neurlang/blobguess/rounds"
	"github.com/neurlang/blobguess/service"
	"github.com/neurlang/blobguess/trainer"
)

const DefaultBaseURL = "https://mlb.praetorian.com"

type Config struct {
	BaseURL                 string `yaml:"base_url"`
	RetryIntervalSeconds    int    `yaml:"retry_interval_seconds"`
	MaxRetries              int    `yaml:"max_retries"`
	HTTPTimeoutSeconds      int    `yaml:"http_timeout_seconds"`
	MaxRounds               int    `yaml:"max_rounds"`
	RequiredConsecutiveWins int    `yaml:"required_consecutive_wins"`
	CacheSize               int    `yaml:"cache_size"`

	Features   FeaturesConfig   `yaml:"features"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Trainer    TrainerConfig    `yaml:"trainer"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type FeaturesConfig struct {
	MinN     int    `yaml:"min_n"`
	MaxN     int    `yaml:"max_n"`
	Buckets  uint32 `yaml:"buckets"`
	MaxTerms int    `yaml:"max_terms"`
}

type ClassifierConfig struct {
	Smoothing float64 `yaml:"smoothing"`
}

type TrainerConfig struct {
	Holdout      float64 `yaml:"holdout"`
	Significance int     `yaml:"significance"`
	Seed         int64   `yaml:"seed"`
	Threads      int     `yaml:"threads"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// ZapLevel parses Level. An empty level means info.
func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, errors.Errorf("log level %q must be debug, info, warn, error, dpanic, panic or fatal", l.Level)
	}
	return level, nil
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics listener
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	f := features.DefaultOptions()
	h := trainer.Defaults()
	return &Config{
		BaseURL:                 DefaultBaseURL,
		RetryIntervalSeconds:    int(service.DefaultRetryInterval / time.Second),
		MaxRounds:               rounds.DefaultMaxRounds,
		RequiredConsecutiveWins: rounds.DefaultRequiredWins,
		CacheSize:               1024,
		Features: FeaturesConfig{
			MinN:     f.MinN,
			MaxN:     f.MaxN,
			Buckets:  f.Buckets,
			MaxTerms: f.MaxTerms,
		},
		Classifier: ClassifierConfig{
			Smoothing: classifier.DefaultOptions().Smoothing,
		},
		Trainer: TrainerConfig{
			Holdout:      h.Holdout,
			Significance: int(h.Significance),
			Seed:         h.Seed,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the file at path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config")
	}
	if err := Parse(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "error in config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg and validates the result. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return errors.Wrap(err, "error parsing config")
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("base_url is required")
	case c.RetryIntervalSeconds < 0:
		return errors.Errorf("retry_interval_seconds %d is negative", c.RetryIntervalSeconds)
	case c.MaxRetries < 0:
		return errors.Errorf("max_retries %d is negative", c.MaxRetries)
	case c.HTTPTimeoutSeconds < 0:
		return errors.Errorf("http_timeout_seconds %d is negative", c.HTTPTimeoutSeconds)
	case c.MaxRounds < 0:
		return errors.Errorf("max_rounds %d is negative", c.MaxRounds)
	case c.RequiredConsecutiveWins < 0:
		return errors.Errorf("required_consecutive_wins %d is negative", c.RequiredConsecutiveWins)
	case c.CacheSize < 0:
		return errors.Errorf("cache_size %d is negative", c.CacheSize)
	case c.Classifier.Smoothing <= 0:
		return errors.Errorf("classifier smoothing %v must be positive", c.Classifier.Smoothing)
	case c.Trainer.Holdout < 0 || c.Trainer.Holdout >= 1:
		return errors.Errorf("trainer holdout %v must be in [0, 1)", c.Trainer.Holdout)
	case c.Trainer.Significance < 1 || c.Trainer.Significance > 100:
		return errors.Errorf("trainer significance %d must be in [1, 100]", c.Trainer.Significance)
	case c.Trainer.Threads < 0:
		return errors.Errorf("trainer threads %d is negative", c.Trainer.Threads)
	case c.Log.Format != "console" && c.Log.Format != "json":
		return errors.Errorf("log format %q must be console or json", c.Log.Format)
	}
	if _, err := c.Log.ZapLevel(); err != nil {
		return err
	}
	return errors.Wrap(c.FeatureOptions().Validate(), "features")
}

func (c *Config) FeatureOptions() features.Options {
	return features.Options{
		MinN:     c.Features.MinN,
		MaxN:     c.Features.MaxN,
		Buckets:  c.Features.Buckets,
		MaxTerms: c.Features.MaxTerms,
		Threads:  c.Trainer.Threads,
	}
}

func (c *Config) HyperParameters() trainer.HyperParameters {
	return trainer.HyperParameters{
		Threads:      c.Trainer.Threads,
		Features:     c.FeatureOptions(),
		Classifier:   classifier.Options{Smoothing: c.Classifier.Smoothing},
		Holdout:      c.Trainer.Holdout,
		Significance: byte(c.Trainer.Significance),
		Seed:         c.Trainer.Seed,
	}
}

func (c *Config) RetryPolicy() service.RetryPolicy {
	return service.RetryPolicy{
		Interval:    time.Duration(c.RetryIntervalSeconds) * time.Second,
		MaxAttempts: c.MaxRetries,
	}
}

// HTTPClient returns a client with the configured timeout, none when zero.
func (c *Config) HTTPClient() *http.Client {
	return &http.Client{Timeout: time.Duration(c.HTTPTimeoutSeconds) * time.Second}
}

func (c *Config) RoundOptions() rounds.Options {
	return rounds.Options{
		MaxRounds:    c.MaxRounds,
		RequiredWins: c.RequiredConsecutiveWins,
	}
}
