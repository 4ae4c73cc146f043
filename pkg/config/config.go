// Package config loads mangapdf settings from defaults, an optional config
// file, MANGAPDF_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kerbaras/mangapdf/pkg/integrations"
)

const (
	BackendExternal = "external"
	BackendPDFCPU   = "pdfcpu"

	DefaultAPI = "https://nnv4api.dmzj.com"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Output     string        `mapstructure:"output"`
	Jobs       int           `mapstructure:"jobs"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Pause      time.Duration `mapstructure:"pause"`
	Backend    string        `mapstructure:"backend"`
	API        string        `mapstructure:"api"`
	Rate       float64       `mapstructure:"rate"`
	TUI        bool          `mapstructure:"tui"`
	Verbose    bool          `mapstructure:"verbose"`
	// Device optimizes pages for a reader profile; empty keeps pages as downloaded.
	Device string `mapstructure:"device"`
}

func DefaultConfig() *Config {
	return &Config{
		Jobs:       6,
		Retries:    5,
		RetryDelay: 10 * time.Second,
		Pause:      time.Second,
		Backend:    BackendExternal,
		API:        DefaultAPI,
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", c.Jobs))
	}
	if c.Retries < 1 {
		errs = append(errs, fmt.Errorf("retries must be at least 1, got %d", c.Retries))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry delay must not be negative, got %s", c.RetryDelay))
	}
	if c.Pause < 0 {
		errs = append(errs, fmt.Errorf("pause must not be negative, got %s", c.Pause))
	}
	if c.Rate < 0 {
		errs = append(errs, fmt.Errorf("rate must not be negative, got %g", c.Rate))
	}
	switch c.Backend {
	case BackendExternal, BackendPDFCPU:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendExternal, BackendPDFCPU))
	}
	if c.Device != "" {
		if _, ok := integrations.GetDevice(c.Device); !ok {
			errs = append(errs, fmt.Errorf("unknown device %q", c.Device))
		}
	}
	if c.API == "" {
		errs = append(errs, errors.New("api base url must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// flagNames maps config keys to the flags that override them.
var flagNames = map[string]string{
	"output":      "output",
	"jobs":        "jobs",
	"retries":     "retries",
	"retry_delay": "retry-delay",
	"pause":       "pause",
	"backend":     "backend",
	"api":         "api",
	"rate":        "rate",
	"tui":         "tui",
	"verbose":     "verbose",
	"device":      "device",
}

// Loader wraps a private viper instance.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("output", defaults.Output)
	v.SetDefault("jobs", defaults.Jobs)
	v.SetDefault("retries", defaults.Retries)
	v.SetDefault("retry_delay", defaults.RetryDelay)
	v.SetDefault("pause", defaults.Pause)
	v.SetDefault("backend", defaults.Backend)
	v.SetDefault("api", defaults.API)
	v.SetDefault("rate", defaults.Rate)
	v.SetDefault("tui", defaults.TUI)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("device", defaults.Device)

	// Environment variables with MANGAPDF_ prefix
	v.SetEnvPrefix("MANGAPDF")
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlags lets flags from fs override the config file and environment.
// Only flags the user actually set take precedence.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for key, name := range flagNames {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads cfgFile, or config.yaml from . or $HOME/.mangapdf when cfgFile
// is empty, and returns the merged, validated configuration. A missing
// default config file is not an error.
func (l *Loader) Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		l.v.SetConfigFile(cfgFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("$HOME/.mangapdf")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
