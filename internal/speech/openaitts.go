package speech

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend is the secondary backend, driven through the OpenAI speech
// API. Emotion speed carries over directly; the voice preset maps onto the
// closest fixed OpenAI voice.
type OpenAIBackend struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

func NewOpenAIBackend(apiKey string) *OpenAIBackend {
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	return &OpenAIBackend{client: client, voice: openai.VoiceNova}
}

func (b *OpenAIBackend) Name() string { return "openai" }
func (b *OpenAIBackend) Ext() string  { return ".mp3" }

func (b *OpenAIBackend) Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error) {
	if b.client == nil {
		return nil, ErrBackendUnavailable
	}

	resp, err := b.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          b.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          params.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech request failed: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("openai returned empty audio")
	}
	return data, nil
}
