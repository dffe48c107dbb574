package config

const (
	defaultEndpoint       = "http://localhost:8090/api/ai/chat"
	defaultTimeoutSeconds = 300

	defaultKafkaTopic = "edrila.turns"

	defaultDevServerListen = ":8090"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Assistant: AssistantConfig{
			Endpoint:       defaultEndpoint,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Events: EventsConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		DevServer: DevServerConfig{
			Listen: defaultDevServerListen,
		},
	}
}
