// Package config provides centralized configuration management for
// starlens: built-in defaults, an optional YAML config file, and
// STARLENS_* environment variable overrides, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "STARLENS"

// Load reads the configuration. An empty path falls back to
// $XDG_CONFIG_HOME/starlens/config.yaml when that file exists; a
// missing config file is not an error, the defaults stand.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.GitHub.Token == "" {
		// conventional fallback shared with gh and other tooling
		cfg.GitHub.Token = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.base_url", "https://api.github.com")
	// empty-string defaults register the keys so AutomaticEnv can see them
	v.SetDefault("github.token", "")
	v.SetDefault("github.user", "")
	v.SetDefault("github.user_agent", "starlens")
	v.SetDefault("github.page_size", 100)
	v.SetDefault("github.timeout", 30*time.Second)

	v.SetDefault("ratelimit.capacity", 5000)
	v.SetDefault("ratelimit.refill_per_second", float64(5000)/3600)
	v.SetDefault("ratelimit.wait_ceiling", 45*time.Second)

	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.initial_backoff", time.Second)
	v.SetDefault("retry.max_backoff", 30*time.Second)
	v.SetDefault("retry.multiplier", 2.0)

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("output.format", "table")

	v.SetDefault("categories.rules_file", "")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8480)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	path := filepath.Join(dir, "starlens", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "starlens.db"
	}
	return filepath.Join(dir, "starlens", "starlens.db")
}
