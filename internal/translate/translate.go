package translate

import (
	"context"
	"fmt"
)

// Service processes free text under a user instruction, typically a
// translation request. An empty result and a transport error are treated
// identically by callers: the document stays unchanged.
type Service interface {
	Process(ctx context.Context, text, instruction string) (string, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	Model string
}

// creates Service based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Service, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiService(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIService(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicService(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// BuildPrompt combines the user's instruction with the input text.
func BuildPrompt(text, instruction string) string {
	return fmt.Sprintf("Instruction: %s\n\nInput Text:\n%s", instruction, text)
}
