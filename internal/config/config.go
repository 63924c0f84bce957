// Package config provides configuration management for journey using Viper
// for loading from files, environment variables, and command-line flags.
//
// Configuration is read from .journey.yml (or the file named by --config or
// JOURNEY_CONFIG_FILE) with JOURNEY_ environment overrides. Every key has a
// default, so running without a config file matches the classic layout: an
// info.toml registry and a .rust-journey-status file in the project root.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	jerrors "github.com/conneroisu/journey/internal/errors"
	"github.com/conneroisu/journey/internal/logging"
)

// Defaults.
const (
	DefaultRegistry     = "info.toml"
	DefaultStatusFile   = ".rust-journey-status"
	DefaultCompiler     = "rustc"
	DefaultEdition      = "2021"
	DefaultTimeout      = 2 * time.Minute
	DefaultDebounce     = 100 * time.Millisecond
	DefaultPollInterval = 10 * time.Millisecond
)

type Config struct {
	Registry   string          `mapstructure:"registry" yaml:"registry" json:"registry"`
	StatusFile string          `mapstructure:"status_file" yaml:"status_file" json:"status_file"`
	BasePath   string          `mapstructure:"base_path" yaml:"base_path" json:"base_path"`
	Toolchain  ToolchainConfig `mapstructure:"toolchain" yaml:"toolchain" json:"toolchain"`
	Verify     VerifyConfig    `mapstructure:"verify" yaml:"verify" json:"verify"`
	Watch      WatchConfig     `mapstructure:"watch" yaml:"watch" json:"watch"`
	Log        LogConfig       `mapstructure:"log" yaml:"log" json:"log"`
}

type ToolchainConfig struct {
	Compiler  string   `mapstructure:"compiler" yaml:"compiler" json:"compiler"`
	Edition   string   `mapstructure:"edition" yaml:"edition" json:"edition"`
	ExtraArgs []string `mapstructure:"extra_args" yaml:"extra_args" json:"extra_args"`
}

type VerifyConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

type WatchConfig struct {
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" json:"poll_interval"`
	ClearScreen  bool          `mapstructure:"clear_screen" yaml:"clear_screen" json:"clear_screen"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// Dir, when set, sends logs to a dated file there instead of stderr.
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("registry", DefaultRegistry)
	v.SetDefault("status_file", DefaultStatusFile)
	v.SetDefault("base_path", ".")
	v.SetDefault("toolchain.compiler", DefaultCompiler)
	v.SetDefault("toolchain.edition", DefaultEdition)
	v.SetDefault("toolchain.extra_args", []string{})
	v.SetDefault("verify.timeout", DefaultTimeout)
	v.SetDefault("watch.debounce", DefaultDebounce)
	v.SetDefault("watch.poll_interval", DefaultPollInterval)
	v.SetDefault("watch.clear_screen", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.dir", "")
}

// Load reads configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, jerrors.NewConfigError(jerrors.CodeInvalidConfig, "failed to decode configuration", err)
	}

	// viper leaves a comma-separated env override as a single element
	if v.IsSet("toolchain.extra_args") {
		config.Toolchain.ExtraArgs = v.GetStringSlice("toolchain.extra_args")
	}

	if err := validateConfig(&config); err != nil {
		return nil, jerrors.NewConfigError(jerrors.CodeInvalidConfig, "invalid configuration", err)
	}

	return &config, nil
}

// RegistryPath returns the registry location, relative paths resolved
// against the base path.
func (c *Config) RegistryPath() string {
	return c.resolve(c.Registry)
}

// StatusPath returns the status file location, relative paths resolved
// against the base path.
func (c *Config) StatusPath() string {
	return c.resolve(c.StatusFile)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BasePath, path)
}

// LoggerConfig converts the log section into a logging configuration.
func (c *Config) LoggerConfig() (*logging.LoggerConfig, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = c.Log.Format
	return lc, nil
}

// String renders a one-line summary for debug logs.
func (c *Config) String() string {
	return fmt.Sprintf("registry=%s status=%s base=%s compiler=%s edition=%s",
		c.RegistryPath(), c.StatusPath(), c.BasePath, c.Toolchain.Compiler, c.Toolchain.Edition)
}
