package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent edrila configuration stored as config.toml
// in the .edrila/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Assistant AssistantConfig `toml:"assistant"`
	Storage   StorageConfig   `toml:"storage"`
	Events    EventsConfig    `toml:"events"`
	DevServer DevServerConfig `toml:"devserver"`
}

// AssistantConfig holds settings for the streaming chat endpoint client.
type AssistantConfig struct {
	Endpoint       string `toml:"endpoint,omitempty"`
	Token          string `toml:"token,omitempty"`
	TimeoutSeconds uint   `toml:"timeout_seconds,omitempty"`
}

// StorageConfig selects the transcript store. A Postgres DSN wins over a
// sqlite path; with neither set transcripts live in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventsConfig holds turn event publishing settings. Publishing is off while
// KafkaBrokers is empty.
type EventsConfig struct {
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// Brokers splits the comma separated broker list.
func (e EventsConfig) Brokers() []string {
	var out []string
	for _, b := range strings.Split(e.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// DevServerConfig holds settings for the local development assistant server.
type DevServerConfig struct {
	Listen    string `toml:"listen,omitempty"`
	JWTSecret string `toml:"jwt_secret,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error

	// secret values are masked by "edrila config list"
	secret bool
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"assistant.endpoint": {
		get: func(c *Config) string { return c.Assistant.Endpoint },
		set: func(c *Config, v string) error { c.Assistant.Endpoint = v; return nil },
	},
	"assistant.token": {
		get:    func(c *Config) string { return c.Assistant.Token },
		set:    func(c *Config, v string) error { c.Assistant.Token = v; return nil },
		secret: true,
	},
	"assistant.timeout_seconds": {
		get: func(c *Config) string {
			if c.Assistant.TimeoutSeconds == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Assistant.TimeoutSeconds), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for assistant.timeout_seconds: %w", err)
			}
			c.Assistant.TimeoutSeconds = uint(n)
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get:    func(c *Config) string { return c.Storage.PostgresDSN },
		set:    func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
		secret: true,
	},
	"events.kafka_brokers": {
		get: func(c *Config) string { return c.Events.KafkaBrokers },
		set: func(c *Config, v string) error { c.Events.KafkaBrokers = v; return nil },
	},
	"events.kafka_topic": {
		get: func(c *Config) string { return c.Events.KafkaTopic },
		set: func(c *Config, v string) error { c.Events.KafkaTopic = v; return nil },
	},
	"devserver.listen": {
		get: func(c *Config) string { return c.DevServer.Listen },
		set: func(c *Config, v string) error { c.DevServer.Listen = v; return nil },
	},
	"devserver.jwt_secret": {
		get:    func(c *Config) string { return c.DevServer.JWTSecret },
		set:    func(c *Config, v string) error { c.DevServer.JWTSecret = v; return nil },
		secret: true,
	},
}
