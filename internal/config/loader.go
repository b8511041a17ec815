package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const envPrefix = "LABLINK"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config captures the settings for an emulator instance.
type Config struct {
	State   StateConfig
	Admin   AdminConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// StateConfig selects where and how the state snapshot is persisted.
type StateConfig struct {
	Backend string
	DSN     string
	Key     string
	Codec   string
}

// AdminConfig is the account seeded into an empty state.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		State: StateConfig{
			Backend: BackendSQLite,
			DSN:     "file:lablink.db",
			Key:     "lablink_mock_state",
			Codec:   "json",
		},
		Admin: AdminConfig{
			Email:    "admin@lablink.test",
			Password: "Admin12345!",
			Name:     "Test Admin",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from defaults, the optional YAML file at path and
// LABLINK_* environment variables, in increasing precedence. Nested keys map
// to variables with dots replaced by underscores, so state.dsn is read from
// LABLINK_STATE_DSN.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		State: StateConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("state.backend"))),
			DSN:     strings.TrimSpace(v.GetString("state.dsn")),
			Key:     strings.TrimSpace(v.GetString("state.key")),
			Codec:   strings.ToLower(strings.TrimSpace(v.GetString("state.codec"))),
		},
		Admin: AdminConfig{
			Email:    strings.TrimSpace(v.GetString("admin.email")),
			Password: v.GetString("admin.password"),
			Name:     strings.TrimSpace(v.GetString("admin.name")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error

	switch c.State.Backend {
	case BackendSQLite:
		if c.State.DSN == "" {
			result = multierror.Append(result, errors.New("state.dsn is required for the sqlite backend"))
		}
	case BackendMemory:
	default:
		result = multierror.Append(result, fmt.Errorf("state.backend %q is not one of sqlite, memory", c.State.Backend))
	}
	if c.State.Key == "" {
		result = multierror.Append(result, errors.New("state.key is required"))
	}
	switch c.State.Codec {
	case "json", "cbor":
	default:
		result = multierror.Append(result, fmt.Errorf("state.codec %q is not one of json, cbor", c.State.Codec))
	}
	if c.Admin.Email == "" || c.Admin.Password == "" {
		result = multierror.Append(result, errors.New("admin.email and admin.password are required"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}

	return result.ErrorOrNil()
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("state.backend", d.State.Backend)
	v.SetDefault("state.dsn", d.State.DSN)
	v.SetDefault("state.key", d.State.Key)
	v.SetDefault("state.codec", d.State.Codec)
	v.SetDefault("admin.email", d.Admin.Email)
	v.SetDefault("admin.password", d.Admin.Password)
	v.SetDefault("admin.name", d.Admin.Name)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
}
