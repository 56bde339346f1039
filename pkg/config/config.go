// Package config loads pymap settings from defaults, an optional pymap.yml,
// PYMAP_* environment variables and a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
)

const (
	// FileName is the config file base name; pymap.yml and pymap.yaml are found.
	FileName = "pymap"
	// EnvPrefix prefixes every environment override, e.g. PYMAP_WORKERS.
	EnvPrefix = "PYMAP"
)

// Keys shared by the config file, environment and flags.
const (
	KeyOutput           = "output"
	KeyWorkers          = "workers"
	KeyLogLevel         = "log_level"
	KeyRespectGitignore = "respect_gitignore"
	KeyIgnoreDirs       = "ignore_dirs"
)

// Config holds the effective settings of one run
type Config struct {
	// Output is the project map path. Empty means <root>/project_map.json.
	Output string `yaml:"output"`
	// Workers bounds the parse stage. Zero means one per CPU.
	Workers          int      `yaml:"workers"`
	LogLevel         string   `yaml:"log_level"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
	IgnoreDirs       []string `yaml:"ignore_dirs"`

	// Source is the config file that was read, if any.
	Source string `yaml:"-"`
}

// DefaultConfig returns the settings used when nothing overrides them
func DefaultConfig() *Config {
	return &Config{
		Output:           "",
		Workers:          runtime.NumCPU(),
		LogLevel:         "warn",
		RespectGitignore: false,
		IgnoreDirs:       []string{},
	}
}

// Load resolves the configuration. An explicit path must exist; otherwise
// pymap.yml is looked up in searchDirs in order and is optional. Environment
// variables override file values.
func Load(path string, searchDirs ...string) (*Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetDefault(KeyOutput, defaults.Output)
	v.SetDefault(KeyWorkers, defaults.Workers)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyRespectGitignore, defaults.RespectGitignore)
	v.SetDefault(KeyIgnoreDirs, defaults.IgnoreDirs)

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
	}

	if path != "" || len(searchDirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if path != "" || !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Output:           v.GetString(KeyOutput),
		Workers:          v.GetInt(KeyWorkers),
		LogLevel:         v.GetString(KeyLogLevel),
		RespectGitignore: v.GetBool(KeyRespectGitignore),
		IgnoreDirs:       v.GetStringSlice(KeyIgnoreDirs),
		Source:           v.ConfigFileUsed(),
	}
	if cfg.IgnoreDirs == nil {
		cfg.IgnoreDirs = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the scanner cannot honor.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid %s: %d (must be >= 0)", KeyWorkers, c.Workers)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	return nil
}

// Level returns the parsed log level, defaulting to Info.
func (c *Config) Level() logger.Level {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}

// YAML renders the configuration as a pymap.yml document.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// LoadDotEnv exports the variables of a .env file into the process
// environment without overriding variables that are already set. A missing
// file or a directory of that name (a virtualenv) is not an error.
func LoadDotEnv(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
