package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultChatModelName = "gemini-1.5-flash"

// Generator is the generation collaborator: one prompt in, one completion
// out. The orchestrator never talks to a concrete SDK directly.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type LLMService struct {
	client *genai.Client
}

func NewLLMService(ctx context.Context, apiKey string) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(defaultChatModelName)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned an empty completion")
	}
	return strings.TrimSpace(text.String()), nil
}
