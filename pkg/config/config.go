package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile           = "config.yaml"
	DefaultTrackerFile    = "tracker.md"
	DefaultIDPrefix       = "T"
	DefaultRateLimitDelay = 200 * time.Millisecond
)

// DefaultExcludeSections are headings whose tasks never sync.
var DefaultExcludeSections = []string{"IDEAS"}

// ErrConfig marks configuration faults. They are fatal and raised before
// any network call.
var ErrConfig = errors.New("configuration error")

type Config struct {
	RepoOwner       string        `mapstructure:"repo_owner" yaml:"repo_owner"`
	RepoName        string        `mapstructure:"repo_name" yaml:"repo_name"`
	ProjectName     string        `mapstructure:"project_name" yaml:"project_name"`
	ProjectID       string        `mapstructure:"project_id" yaml:"project_id,omitempty"`
	TrackerFile     string        `mapstructure:"tracker_file" yaml:"tracker_file"`
	ExcludeSections []string      `mapstructure:"exclude_sections" yaml:"exclude_sections"`
	RateLimitDelay  time.Duration `mapstructure:"rate_limit_delay" yaml:"rate_limit_delay"`
	IDPrefix        string        `mapstructure:"id_prefix" yaml:"id_prefix"`
	APIURL          string        `mapstructure:"api_url" yaml:"api_url,omitempty"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level,omitempty"`
	LogFile         string        `mapstructure:"log_file" yaml:"log_file,omitempty"`

	// Path is where the config was loaded from.
	Path string `mapstructure:"-" yaml:"-"`
}

// Default returns a config with every optional key filled in.
func Default() *Config {
	return &Config{
		TrackerFile:     DefaultTrackerFile,
		ExcludeSections: append([]string(nil), DefaultExcludeSections...),
		RateLimitDelay:  DefaultRateLimitDelay,
		IDPrefix:        DefaultIDPrefix,
	}
}

// Load reads the config file at path. A missing file or a missing
// required key is reported as ErrConfig.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s not found", ErrConfig, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	def := Default()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("tracker_file", def.TrackerFile)
	v.SetDefault("exclude_sections", def.ExcludeSections)
	v.SetDefault("rate_limit_delay", def.RateLimitDelay)
	v.SetDefault("id_prefix", def.IDPrefix)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrConfig, path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrConfig, path, err)
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the keys every run needs.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.RepoOwner) == "" {
		missing = append(missing, "repo_owner")
	}
	if strings.TrimSpace(c.RepoName) == "" {
		missing = append(missing, "repo_name")
	}
	if strings.TrimSpace(c.ProjectName) == "" {
		missing = append(missing, "project_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfig, strings.Join(missing, ", "))
	}
	if c.RateLimitDelay < 0 {
		return fmt.Errorf("%w: rate_limit_delay must not be negative", ErrConfig)
	}
	return nil
}

// TrackerPath resolves tracker_file relative to the config file.
func (c *Config) TrackerPath() string {
	if filepath.IsAbs(c.TrackerFile) || c.Path == "" {
		return c.TrackerFile
	}
	return filepath.Join(filepath.Dir(c.Path), c.TrackerFile)
}

// Repo returns owner/name.
func (c *Config) Repo() string {
	return c.RepoOwner + "/" + c.RepoName
}

// Save writes cfg as YAML. It refuses to overwrite an existing file
// unless force is set.
func Save(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
