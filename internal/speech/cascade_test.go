package speech

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name     string
	fail     bool
	audio    []byte
	received []string
}

func (b *fakeBackend) Name() string { return b.name }
func (b *fakeBackend) Ext() string  { return ".mp3" }

func (b *fakeBackend) Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error) {
	b.received = append(b.received, text)
	if b.fail {
		return nil, errors.New("backend exploded")
	}
	return b.audio, nil
}

type fakePublisher struct {
	published [][]byte
	fail      bool
}

func (p *fakePublisher) Publish(data []byte, ext string) (string, error) {
	if p.fail {
		return "", errors.New("disk full")
	}
	p.published = append(p.published, data)
	return "/static/fake" + ext, nil
}

func newTestCascade(pub Publisher, backends ...Backend) *Cascade {
	return NewCascade(pub, rand.New(rand.NewSource(1)), backends...)
}

func TestCascadeFallsThroughToThirdBackend(t *testing.T) {
	b1 := &fakeBackend{name: "first", fail: true}
	b2 := &fakeBackend{name: "second", fail: true}
	b3 := &fakeBackend{name: "third", audio: []byte("mp3 bytes")}
	pub := &fakePublisher{}

	c := newTestCascade(pub, b1, b2, b3)
	path := c.Synthesize(context.Background(), "hello there friend", EmotionAuto)

	assert.Equal(t, "/static/fake.mp3", path)
	require.Len(t, pub.published, 1)
	assert.Equal(t, []byte("mp3 bytes"), pub.published[0])

	// Every backend was tried exactly once.
	assert.Len(t, b1.received, 1)
	assert.Len(t, b2.received, 1)
	assert.Len(t, b3.received, 1)
}

func TestCascadeExhaustionReturnsNoAudioSentinel(t *testing.T) {
	b1 := &fakeBackend{name: "first", fail: true}
	b2 := &fakeBackend{name: "second", fail: true}
	pub := &fakePublisher{}

	c := newTestCascade(pub, b1, b2)
	path := c.Synthesize(context.Background(), "hello there friend", EmotionAuto)

	assert.Equal(t, "", path)
	assert.Empty(t, pub.published, "nothing may be published on failure")
}

func TestCascadePadsShortText(t *testing.T) {
	b := &fakeBackend{name: "only", audio: []byte("a")}
	c := newTestCascade(&fakePublisher{}, b)

	// Whitespace does not count toward the minimum.
	for _, text := range []string{"", "h", "hi", "a  ", "  hi ", " \t "} {
		c.Synthesize(context.Background(), text, EmotionAuto)
	}

	require.Len(t, b.received, 6)
	for _, got := range b.received {
		assert.GreaterOrEqual(t, utf8.RuneCountInString(strings.TrimSpace(got)), minSynthesisLength)
	}
}

func TestCascadeFallbackPrependsCoverPhrase(t *testing.T) {
	b1 := &fakeBackend{name: "first", fail: true}
	b2 := &fakeBackend{name: "second", audio: []byte("a")}

	c := newTestCascade(&fakePublisher{}, b1, b2)
	c.Synthesize(context.Background(), "hello there friend", EmotionAuto)

	// The primary hears the text as-is, the fallback gets a cover phrase.
	require.Len(t, b1.received, 1)
	assert.Equal(t, "hello there friend", b1.received[0])

	require.Len(t, b2.received, 1)
	assert.True(t, strings.HasSuffix(b2.received[0], " hello there friend"))

	covered := false
	for _, phrase := range coverPhrases {
		if strings.HasPrefix(b2.received[0], phrase) {
			covered = true
		}
	}
	assert.True(t, covered, "fallback input should start with a cover phrase: %q", b2.received[0])
}

func TestCascadePublisherFailureFallsThrough(t *testing.T) {
	// A backend that produced audio the publisher cannot store is treated
	// like a failed attempt.
	b1 := &fakeBackend{name: "first", audio: []byte("a")}
	pub := &fakePublisher{fail: true}

	c := newTestCascade(pub, b1)
	path := c.Synthesize(context.Background(), "hello there friend", EmotionAuto)

	assert.Equal(t, "", path)
}

func TestCascadeSkipsUnavailableBackends(t *testing.T) {
	unavailable := &unavailableBackend{}
	b2 := &fakeBackend{name: "second", audio: []byte("a")}
	pub := &fakePublisher{}

	c := newTestCascade(pub, unavailable, b2)
	path := c.Synthesize(context.Background(), "hello there friend", EmotionAuto)

	assert.Equal(t, "/static/fake.mp3", path)
}

type unavailableBackend struct{}

func (b *unavailableBackend) Name() string { return "unavailable" }
func (b *unavailableBackend) Ext() string  { return ".mp3" }
func (b *unavailableBackend) Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error) {
	return nil, ErrBackendUnavailable
}

type failingBackend struct{}

func (b *failingBackend) Name() string { return "failing" }
func (b *failingBackend) Ext() string  { return ".mp3" }
func (b *failingBackend) Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error) {
	return nil, errors.New("down")
}

type staticBackend struct{}

func (b *staticBackend) Name() string { return "static" }
func (b *staticBackend) Ext() string  { return ".mp3" }
func (b *staticBackend) Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error) {
	return []byte("a"), nil
}

type staticPublisher struct{}

func (p *staticPublisher) Publish(data []byte, ext string) (string, error) {
	return "/static/fake.mp3", nil
}

// Concurrent requests all take the fallback path, so every goroutine draws a
// cover phrase from the cascade's shared rand. Run with -race.
func TestCascadeConcurrentSynthesize(t *testing.T) {
	c := NewCascade(&staticPublisher{}, rand.New(rand.NewSource(1)), &failingBackend{}, &staticBackend{})

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Synthesize(context.Background(), "hello there friend", EmotionAuto)
		}(i)
	}
	wg.Wait()

	for _, path := range results {
		assert.Equal(t, "/static/fake.mp3", path)
	}
}
