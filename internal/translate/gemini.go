package translate

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// implements Service using Google Gemini
type GeminiService struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiService(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiService{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (s *GeminiService) Process(
	ctx context.Context,
	text, instruction string,
) (string, error) {
	prompt := BuildPrompt(text, instruction)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("processing failed: %w", err)
	}

	responseText := result.Text()
	if responseText == "" {
		return "", fmt.Errorf("no text in Gemini response")
	}
	return responseText, nil
}

func (s *GeminiService) Close() error {
	return nil
}
