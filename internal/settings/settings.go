// Package settings resolves the Sync Executor's knobs — max_concurrent,
// fetch, offline, exit_on_error — from CLI flags, VCSPULL_* environment
// variables, and an optional settings.toml, in that precedence order.
//
// Grounded on other_examples/36dac33a_raphi011-wt's config.go for the
// toml-default-file idiom (read-if-exists, Default() on ErrNotExist),
// generalised here onto github.com/spf13/viper so the teacher's own
// viper dependency gets a home instead of sitting unused: viper layers
// flags over env over file for us instead of hand-rolled precedence.
package settings

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Settings are the executor knobs, resolved once at startup.
type Settings struct {
	MaxConcurrent  int
	Fetch          bool
	Offline        bool
	ExitOnError    bool
	IncludeWorktrees bool
}

// fileConfig mirrors the optional [vcspull] table in settings.toml.
// Fields are pointers so an absent key in the file is distinguishable
// from an explicit zero/false, and does not clobber viper's own
// lower-priority default.
type fileConfig struct {
	Vcspull struct {
		MaxConcurrent *int  `toml:"max_concurrent"`
		Fetch         *bool `toml:"fetch"`
		Offline       *bool `toml:"offline"`
		ExitOnError   *bool `toml:"exit_on_error"`
	} `toml:"vcspull"`
}

// defaultPath returns ~/.config/vcspull/settings.toml, or
// $XDG_CONFIG_HOME/vcspull/settings.toml when XDG_CONFIG_HOME is set.
func defaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "vcspull", "settings.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vcspull", "settings.toml"), nil
}

// Resolve layers flag values (already parsed by cobra into v) over
// VCSPULL_* environment variables over settings.toml over these
// defaults: max_concurrent=4, fetch=true, offline=false,
// exit_on_error=false, include_worktrees=false.
func Resolve(v *viper.Viper) (Settings, error) {
	v.SetDefault("max_concurrent", 4)
	v.SetDefault("fetch", true)
	v.SetDefault("offline", false)
	v.SetDefault("exit_on_error", false)
	v.SetDefault("include_worktrees", false)

	v.SetEnvPrefix("VCSPULL")
	_ = v.BindEnv("max_concurrent")
	_ = v.BindEnv("fetch")
	_ = v.BindEnv("offline")
	_ = v.BindEnv("exit_on_error")
	_ = v.BindEnv("include_worktrees")

	if err := applyFile(v); err != nil {
		return Settings{}, err
	}

	return Settings{
		MaxConcurrent:    v.GetInt("max_concurrent"),
		Fetch:            v.GetBool("fetch"),
		Offline:          v.GetBool("offline"),
		ExitOnError:      v.GetBool("exit_on_error"),
		IncludeWorktrees: v.GetBool("include_worktrees"),
	}, nil
}

// applyFile reads settings.toml, if present, and sets each value it
// carries, at a lower priority than anything v already has explicitly
// set (flags/env bound earlier win via viper's own precedence once
// these are registered as defaults rather than overrides).
func applyFile(v *viper.Viper) error {
	path, err := defaultPath()
	if err != nil {
		return nil // no resolvable home dir: fall back to defaults/env/flags only
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fc fileConfig
	if _, err := toml.Decode(string(data), &fc); err != nil {
		return err
	}

	if fc.Vcspull.MaxConcurrent != nil {
		v.SetDefault("max_concurrent", *fc.Vcspull.MaxConcurrent)
	}
	if fc.Vcspull.Fetch != nil {
		v.SetDefault("fetch", *fc.Vcspull.Fetch)
	}
	if fc.Vcspull.Offline != nil {
		v.SetDefault("offline", *fc.Vcspull.Offline)
	}
	if fc.Vcspull.ExitOnError != nil {
		v.SetDefault("exit_on_error", *fc.Vcspull.ExitOnError)
	}
	return nil
}
