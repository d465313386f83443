// Package config parses the desktop helper's snapdeck.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/scheduler"
)

// Config is the top-level snapdeck.toml configuration.
type Config struct {
	User      UserConfig       `toml:"user"`
	Store     StoreConfig      `toml:"store"`
	Scheduler scheduler.Config `toml:"scheduler"`

	// DailyNewLimit caps items introduced per calendar day. 0 = unlimited.
	DailyNewLimit int `toml:"daily_new_limit"`
}

// UserConfig identifies the local user. The helper is single-user; the
// ID only has to match what the companion app syncs under.
type UserConfig struct {
	ID string `toml:"id"`
}

// StoreConfig locates the local database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		User:          UserConfig{ID: "local"},
		Store:         StoreConfig{Path: defaultStorePath()},
		Scheduler:     scheduler.DefaultConfig(),
		DailyNewLimit: domain.DefaultDailyNewLimit,
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "snapdeck.db"
	}
	return filepath.Join(home, ".snapdeck", "helper.db")
}

// Load reads the config file at path, overlaying it on the defaults.
// A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.User.ID == "" {
		return fmt.Errorf("config: user.id cannot be empty")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("config: store.path cannot be empty")
	}
	if c.DailyNewLimit < 0 {
		return fmt.Errorf("config: daily_new_limit cannot be negative")
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	return nil
}
