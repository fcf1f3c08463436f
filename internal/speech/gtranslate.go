package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const gtranslateTTSURL = "https://translate.google.com/translate_tts"

// GTranslateBackend is the last-resort backend: the unauthenticated Google
// Translate TTS endpoint. No key, no voice control, but it is essentially
// always reachable. The endpoint rejects long inputs, so text is clipped.
type GTranslateBackend struct {
	client *http.Client
}

const gtranslateMaxChars = 200

func NewGTranslateBackend() *GTranslateBackend {
	return &GTranslateBackend{client: &http.Client{}}
}

func (b *GTranslateBackend) Name() string { return "gtranslate" }
func (b *GTranslateBackend) Ext() string  { return ".mp3" }

func (b *GTranslateBackend) Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error) {
	runes := []rune(text)
	if len(runes) > gtranslateMaxChars {
		text = string(runes[:gtranslateMaxChars])
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", "en")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gtranslateTTSURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate tts returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("translate tts returned empty audio")
	}
	return data, nil
}
