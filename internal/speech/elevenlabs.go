package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsModelID      = "eleven_multilingual_v2"
	elevenLabsOutputFormat = "mp3_44100_64"
	defaultElevenVoiceID   = "21m00Tcm4TlvDq8ikWAM" // Rachel
)

// ElevenLabsBackend is the primary, highest-quality backend.
type ElevenLabsBackend struct {
	apiKey  string
	voiceID string
	client  *http.Client
}

func NewElevenLabsBackend(apiKey, voiceID string) *ElevenLabsBackend {
	if voiceID == "" {
		voiceID = defaultElevenVoiceID
	}
	return &ElevenLabsBackend{
		apiKey:  apiKey,
		voiceID: voiceID,
		client:  &http.Client{},
	}
}

func (b *ElevenLabsBackend) Name() string { return "elevenlabs" }
func (b *ElevenLabsBackend) Ext() string  { return ".mp3" }

type elevenLabsRequest struct {
	Text          string              `json:"text"`
	ModelID       string              `json:"model_id"`
	VoiceSettings elevenVoiceSettings `json:"voice_settings"`
}

type elevenVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed"`
}

func (b *ElevenLabsBackend) Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error) {
	if b.apiKey == "" {
		return nil, ErrBackendUnavailable
	}

	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModelID,
		VoiceSettings: elevenVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Speed:           params.Speed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?output_format=%s", elevenLabsBaseURL, b.voiceID, elevenLabsOutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("xi-api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("elevenlabs returned empty audio")
	}
	return data, nil
}
