package ai

import "fmt"

// Config carries provider credentials and model overrides.
type Config struct {
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
	GeminiKey      string
	GeminiModel    string
}

func (c Config) configured(k Kind) bool {
	switch k {
	case KindOpenAI:
		return c.OpenAIKey != ""
	case KindClaude:
		return c.AnthropicKey != ""
	case KindGemini:
		return c.GeminiKey != ""
	case KindFallback:
		return true
	}
	return false
}

// New builds the provider for a kind.
func New(k Kind, cfg Config) (Provider, error) {
	switch k {
	case KindOpenAI:
		return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel)
	case KindClaude:
		return NewAnthropic(cfg.AnthropicKey, cfg.AnthropicModel)
	case KindGemini:
		return NewGemini(cfg.GeminiKey, cfg.GeminiModel)
	case KindFallback:
		return FallbackProvider{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, k)
}

// Resolve selects a provider by name. An empty name picks the first
// configured provider in priority order, ending with the fallback.
func Resolve(name string, cfg Config) (Provider, error) {
	if name != "" {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		return New(k, cfg)
	}

	for _, k := range defaultPriority {
		if cfg.configured(k) {
			return New(k, cfg)
		}
	}
	logger.Sugar().Warnf("No AI provider configured, using fallback scoring")
	return FallbackProvider{}, nil
}
