package constants

import "strings"

// Provider names as they appear in configuration and the registry.
const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
)

var allProviders = []string{
	ProviderOpenAI,
	ProviderGemini,
	ProviderAnthropic,
	ProviderOpenRouter,
}

// ProviderNames returns the known provider names in registration order.
func ProviderNames() []string {
	out := make([]string, len(allProviders))
	copy(out, allProviders)
	return out
}

// NormalizeProviderName lowercases and trims a provider name.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
