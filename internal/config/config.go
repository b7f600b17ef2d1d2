// Package config defines the run configuration and the keyword input
// file format.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full run configuration, populated from flags, the
// config file, and LEADHARVEST_* environment variables via viper.
type Config struct {
	// DataDir roots all output: run files, the lead store, the lists.
	DataDir string `mapstructure:"data_dir" validate:"required"`
	// KeywordsFile is the YAML file holding the keyword categories.
	KeywordsFile string `mapstructure:"keywords_file"`

	// Pages caps result pages walked per keyword combination.
	Pages int `mapstructure:"pages" validate:"min=1,max=20"`
	// Platforms restricts search results. Empty means both.
	Platforms []string `mapstructure:"platforms" validate:"dive,oneof=facebook instagram"`

	// Provider selects the model backend; empty auto-detects from the
	// environment.
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=anthropic openai openrouter ollama"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url" validate:"omitempty,url"`

	// Headless runs the browser without a display.
	Headless bool `mapstructure:"headless"`
	// NavTimeout bounds each page navigation.
	NavTimeout time.Duration `mapstructure:"nav_timeout" validate:"min=0"`
	// DelayMin/DelayMax bound the randomized pause between page scrapes.
	DelayMin time.Duration `mapstructure:"delay_min" validate:"min=0"`
	DelayMax time.Duration `mapstructure:"delay_max" validate:"min=0,gtefield=DelayMin"`

	// MaxContentSize bounds the page text sent to the model, in bytes.
	// Zero means no limit.
	MaxContentSize int `mapstructure:"max_content_size" validate:"min=0"`

	// Consolidate folds the run results into the lead store afterwards.
	Consolidate bool `mapstructure:"consolidate"`
	// UpdateLists refreshes the per-channel value lists afterwards.
	UpdateLists bool `mapstructure:"update_lists"`

	// SnapshotDir receives debug captures of failed pages. Empty
	// disables them.
	SnapshotDir string `mapstructure:"snapshot_dir"`
	// StatusFile, when set, receives run progress as JSON.
	StatusFile string `mapstructure:"status_file"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DataDir:        ".",
		Pages:          5,
		Platforms:      []string{"facebook", "instagram"},
		Headless:       true,
		NavTimeout:     45 * time.Second,
		DelayMin:       3 * time.Second,
		DelayMax:       6 * time.Second,
		MaxContentSize: 15000,
	}
}

// Load builds the configuration from the current viper state on top of
// the defaults, and validates it.
func Load() (Config, error) {
	cfg := Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
