package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/dotdir"
)

// EnvPrefix is the prefix for environment overrides, e.g. EDRILA_ASSISTANT_TOKEN.
const EnvPrefix = "EDRILA"

// InitViper creates and returns a configured *viper.Viper.
// It loads .env files, sets defaults from NewDefaultConfig(), reads the
// config.toml file (if found via dotdir resolution), and binds environment
// variables with the EDRILA_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (EDRILA_ASSISTANT_ENDPOINT, etc.), including .env
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Assistant: AssistantConfig{
			Endpoint:       v.GetString("assistant.endpoint"),
			Token:          v.GetString("assistant.token"),
			TimeoutSeconds: v.GetUint("assistant.timeout_seconds"),
		},
		Storage: StorageConfig{
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Events: EventsConfig{
			KafkaBrokers: v.GetString("events.kafka_brokers"),
			KafkaTopic:   v.GetString("events.kafka_topic"),
		},
		DevServer: DevServerConfig{
			Listen:    v.GetString("devserver.listen"),
			JWTSecret: v.GetString("devserver.jwt_secret"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. Every key is registered, even with an empty
// default, so AutomaticEnv can resolve it.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("assistant.endpoint", d.Assistant.Endpoint)
	v.SetDefault("assistant.token", d.Assistant.Token)
	v.SetDefault("assistant.timeout_seconds", d.Assistant.TimeoutSeconds)

	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	v.SetDefault("events.kafka_brokers", d.Events.KafkaBrokers)
	v.SetDefault("events.kafka_topic", d.Events.KafkaTopic)

	v.SetDefault("devserver.listen", d.DevServer.Listen)
	v.SetDefault("devserver.jwt_secret", d.DevServer.JWTSecret)
}
