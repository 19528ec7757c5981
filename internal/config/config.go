// Package config loads service settings from flags and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/ortelius/pdvd-assess/database"
	"github.com/ortelius/pdvd-assess/internal/ai"
	"github.com/spf13/viper"
)

// Config is the resolved service configuration.
type Config struct {
	Port       string
	OSVURL     string
	AIProvider string
	AI         ai.Config
	Arango     database.Config
	Kafka      KafkaConfig
}

// KafkaConfig holds broker settings. Credentials enable SASL/PLAIN over TLS.
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	APIKey        string
	APISecret     string
	GroupID       string
	RequestsTopic string
	EventsTopic   string
}

// SecureTransport reports whether SASL credentials are present.
func (k KafkaConfig) SecureTransport() bool {
	return k.APIKey != "" && k.APISecret != ""
}

// NewViper returns a viper instance with defaults applied. Dotted keys map to
// environment variables with underscores and no prefix, e.g. arango.host
// reads ARANGO_HOST.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("osv.url", "https://api.osv.dev")
	v.SetDefault("ai.provider", "")

	v.SetDefault("arango.host", "localhost")
	v.SetDefault("arango.port", "8529")
	v.SetDefault("arango.protocol", "http")
	v.SetDefault("arango.user", "root")
	v.SetDefault("arango.pass", "")
	v.SetDefault("arango.url", "")
	v.SetDefault("arango.db", "vulnassess")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.api_key", "")
	v.SetDefault("kafka.api_secret", "")
	v.SetDefault("kafka.group_id", "pdvd-assess-worker")
	v.SetDefault("kafka.requests_topic", "assessment-requests")
	v.SetDefault("kafka.events_topic", "assessment-events")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "")
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "")
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) Config {
	arangoURL := v.GetString("arango.url")
	if arangoURL == "" {
		arangoURL = fmt.Sprintf("%s://%s:%s", v.GetString("arango.protocol"), v.GetString("arango.host"), v.GetString("arango.port"))
	}

	return Config{
		Port:       v.GetString("port"),
		OSVURL:     v.GetString("osv.url"),
		AIProvider: v.GetString("ai.provider"),
		AI: ai.Config{
			OpenAIKey:      v.GetString("openai.api_key"),
			OpenAIModel:    v.GetString("openai.model"),
			AnthropicKey:   v.GetString("anthropic.api_key"),
			AnthropicModel: v.GetString("anthropic.model"),
			GeminiKey:      v.GetString("gemini.api_key"),
			GeminiModel:    v.GetString("gemini.model"),
		},
		Arango: database.Config{
			URL:      arangoURL,
			User:     v.GetString("arango.user"),
			Password: v.GetString("arango.pass"),
			Name:     v.GetString("arango.db"),
		},
		Kafka: KafkaConfig{
			Enabled:       v.GetBool("kafka.enabled"),
			Brokers:       splitList(v.GetString("kafka.brokers")),
			APIKey:        v.GetString("kafka.api_key"),
			APISecret:     v.GetString("kafka.api_secret"),
			GroupID:       v.GetString("kafka.group_id"),
			RequestsTopic: v.GetString("kafka.requests_topic"),
			EventsTopic:   v.GetString("kafka.events_topic"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
