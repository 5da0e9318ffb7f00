package toolcall

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ExecutorConfig is the file form of the executor options.
//
//	timeout: 30s
//	validate_parameters: true
//	include_timing: true
//	apply_defaults: false
//	max_concurrency: 8
//	recover_panics: true
//	logging:
//	  level: info
//	  pretty: false
type ExecutorConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	ValidateParameters bool          `yaml:"validate_parameters"`
	IncludeTiming      bool          `yaml:"include_timing"`
	ApplyDefaults      bool          `yaml:"apply_defaults"`
	MaxConcurrency     int           `yaml:"max_concurrency"`
	RecoverPanics      bool          `yaml:"recover_panics"`
	Logging            LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects the executor log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"` // debug, info, warn, error, disabled
	Pretty bool   `yaml:"pretty"`
}

// DefaultExecutorConfig mirrors the NewExecutor defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Timeout:            30 * time.Second,
		ValidateParameters: true,
		IncludeTiming:      true,
		RecoverPanics:      true,
		Logging:            LoggingConfig{Level: "info"},
	}
}

// ParseExecutorConfig decodes YAML on top of DefaultExecutorConfig, so omitted keys keep
// their defaults.
func ParseExecutorConfig(data []byte) (ExecutorConfig, error) {
	cfg := DefaultExecutorConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ExecutorConfig{}, &ConfigError{Reason: "parse executor config: " + err.Error(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return ExecutorConfig{}, err
	}
	return cfg, nil
}

// LoadExecutorConfig reads and parses a YAML file.
func LoadExecutorConfig(path string) (ExecutorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExecutorConfig{}, fmt.Errorf("read executor config: %w", err)
	}
	return ParseExecutorConfig(data)
}

// Validate rejects negative limits and unknown log levels.
func (c ExecutorConfig) Validate() error {
	if c.Timeout < 0 {
		return configErrorf(ErrConfig, "timeout must not be negative, got %v", c.Timeout)
	}
	if c.MaxConcurrency < 0 {
		return configErrorf(ErrConfig, "max_concurrency must not be negative, got %d", c.MaxConcurrency)
	}
	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
			return configErrorf(ErrConfig, "invalid log level %q", c.Logging.Level)
		}
	}
	return nil
}

// Options converts the config into executor options. The logger is not included; pass
// WithLogger(c.Logging.NewLogger(w)) to attach one.
func (c ExecutorConfig) Options() []ExecutorOption {
	return []ExecutorOption{
		WithDefaultTimeout(c.Timeout),
		WithValidation(c.ValidateParameters),
		WithTiming(c.IncludeTiming),
		WithApplyDefaults(c.ApplyDefaults),
		WithMaxConcurrency(c.MaxConcurrency),
		WithRecoverPanics(c.RecoverPanics),
	}
}

// NewLogger builds a leveled zerolog logger writing to w. An empty or invalid level means info.
func (c LoggingConfig) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	if c.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
