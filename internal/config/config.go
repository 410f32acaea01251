// Package config loads config.toml with spf13/viper, applying defaults
// so a missing file or key is never an error on first run.
//
// Grounded on pass-cli's viper+TOML configuration loader: a package-level
// default map fed to viper.SetDefault before an optional file read, so
// defaults and an on-disk override merge transparently.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/vaultkeeper"
	"github.com/blackwell-systems/vaultkeeper/internal/logging"
)

// Config is the fully-resolved configuration (no range checks applied) handed to every
// component at startup — no component reads viper directly past this
// point.
type Config struct {
	ClipboardTimeout    time.Duration
	AutoLockMinutes     int
	CaseSensitive       bool
	FuzzyMatching       bool
	CacheTTL            time.Duration
	CacheAutoRefreshMin int
	CacheEnabled        bool

	LogLevel logging.Level
	LogPath  string
}

const envPrefix = "VAULTKEEPER"

func defaults(v *viper.Viper) {
	v.SetDefault("clipboard_timeout", 20)
	v.SetDefault("auto_lock_minutes", 15)
	v.SetDefault("case_sensitive", false)
	v.SetDefault("fuzzy_matching", true)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.auto_refresh_minutes", 5)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
}

// Load reads path (a config.toml) if present, applying defaults for
// anything absent. A missing file is not an error; a present-but-malformed file is.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		// SetConfigFile (an explicit path, as opposed to SetConfigName +
		// AddConfigPath's search mode) makes ReadInConfig surface a missing
		// file as a plain *fs.PathError rather than ConfigFileNotFoundError,
		// so both must be treated as "no file yet, defaults apply".
		if !errors.As(err, &notFoundErr) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, vaultkeeper.Wrap(vaultkeeper.KindConfig, "config.load", path, err)
		}
	}

	cfg := Config{
		ClipboardTimeout:    time.Duration(v.GetInt("clipboard_timeout")) * time.Second,
		AutoLockMinutes:     v.GetInt("auto_lock_minutes"),
		CaseSensitive:       v.GetBool("case_sensitive"),
		FuzzyMatching:       v.GetBool("fuzzy_matching"),
		CacheTTL:            time.Duration(v.GetInt("cache.ttl_seconds")) * time.Second,
		CacheAutoRefreshMin: v.GetInt("cache.auto_refresh_minutes"),
		CacheEnabled:        v.GetBool("cache.enabled"),
		LogLevel:            logging.Level(v.GetString("log.level")),
		LogPath:             v.GetString("log.path"),
	}
	return cfg, nil
}
