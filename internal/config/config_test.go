package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(NewViper())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.osv.dev", cfg.OSVURL)
	assert.Equal(t, "http://localhost:8529", cfg.Arango.URL)
	assert.Equal(t, "vulnassess", cfg.Arango.Name)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "pdvd-assess-worker", cfg.Kafka.GroupID)
	assert.Equal(t, "assessment-requests", cfg.Kafka.RequestsTopic)
	assert.Equal(t, "assessment-events", cfg.Kafka.EventsTopic)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Kafka.SecureTransport())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ARANGO_HOST", "arango.internal")
	t.Setenv("ARANGO_PORT", "9529")
	t.Setenv("ARANGO_PASS", "s3cret")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092,")
	t.Setenv("KAFKA_API_KEY", "key")
	t.Setenv("KAFKA_API_SECRET", "secret")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("AI_PROVIDER", "claude")
	t.Setenv("PORT", "9000")

	cfg := Load(NewViper())

	assert.Equal(t, "http://arango.internal:9529", cfg.Arango.URL)
	assert.Equal(t, "s3cret", cfg.Arango.Password)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Kafka.SecureTransport())
	assert.Equal(t, "sk-test", cfg.AI.OpenAIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.AI.GeminiModel)
	assert.Equal(t, "claude", cfg.AIProvider)
	assert.Equal(t, "9000", cfg.Port)
}

func TestArangoURLOverridesHost(t *testing.T) {
	t.Setenv("ARANGO_URL", "https://db.example.com:8530")
	t.Setenv("ARANGO_HOST", "ignored")

	cfg := Load(NewViper())
	assert.Equal(t, "https://db.example.com:8530", cfg.Arango.URL)
}
