// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appName  = "tplvars"
	fileName = appName + ".yml"
)

// Config holds all configuration values for tplvars.
type Config struct {
	DataDir   string        `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	Workspace string        `mapstructure:"workspace" yaml:"workspace" validate:"required"`
	Store     string        `mapstructure:"store" yaml:"store" validate:"oneof=file nats"`
	LogLevel  string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile   string        `mapstructure:"log_file" yaml:"log_file"`
	Debounce  time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Realtime  bool          `mapstructure:"realtime" yaml:"realtime"`
	Formatter string        `mapstructure:"formatter" yaml:"formatter" validate:"oneof=none minify"`
	Theme     string        `mapstructure:"theme" yaml:"theme" validate:"oneof=light dark"`
	Template  string        `mapstructure:"template" yaml:"template" validate:"required"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		DataDir:   ".tplvars",
		Workspace: "default",
		Store:     "file",
		LogLevel:  "info",
		Debounce:  300 * time.Millisecond,
		Realtime:  true,
		Formatter: "none",
		Theme:     "light",
		Template:  "template.html",
	}
}

// keys lists every config key in declaration order.
var keys = []string{
	"data_dir", "workspace", "store", "log_level", "log_file",
	"debounce", "realtime", "formatter", "theme", "template",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults.
// Only flags the user set on fs take part; fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(appName)

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("workspace", def.Workspace)
	v.SetDefault("store", def.Store)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("debounce", def.Debounce)
	v.SetDefault("realtime", def.Realtime)
	v.SetDefault("formatter", def.Formatter)
	v.SetDefault("theme", def.Theme)
	v.SetDefault("template", def.Template)

	v.SetEnvPrefix("TPLVARS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so bool and duration values parse from env
	for _, key := range keys {
		if err := v.BindEnv(key, "TPLVARS_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if projectPath := ProjectPath(); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	if fs != nil {
		var bindErr error
		fs.Visit(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !slices.Contains(keys, key) || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("binding flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks enumerated values and required fields.
func (c *Config) Validate() error {
	if c.Debounce < 0 {
		return errors.New("invalid config: debounce must not be negative")
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "oneof" {
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns $XDG_CONFIG_HOME/tplvars/tplvars.yml, falling back to
// ~/.config/tplvars/tplvars.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, fileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, fileName)
}

// ProjectPath returns ./tplvars.yml.
func ProjectPath() string {
	return fileName
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
