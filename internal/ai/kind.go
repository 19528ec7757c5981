package ai

import (
	"fmt"
	"strings"
)

// Kind identifies one of the supported providers.
type Kind string

// Supported provider kinds.
const (
	KindOpenAI   Kind = "openai"
	KindClaude   Kind = "claude"
	KindGemini   Kind = "gemini"
	KindFallback Kind = "fallback"
)

// defaultPriority is the order tried when no provider is requested.
var defaultPriority = []Kind{KindGemini, KindOpenAI, KindClaude}

var kindAliases = map[string]Kind{
	"openai":    KindOpenAI,
	"gpt":       KindOpenAI,
	"gpt-4":     KindOpenAI,
	"claude":    KindClaude,
	"anthropic": KindClaude,
	"gemini":    KindGemini,
	"google":    KindGemini,
	"fallback":  KindFallback,
	"none":      KindFallback,
	"no-ai":     KindFallback,
}

// ParseKind maps a provider name or alias to its Kind. Matching ignores case.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q (supported: openai, claude, gemini, fallback)", ErrUnknownProvider, name)
}
