package speech

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// minSynthesisLength guards against backends that reject near-empty input.
const minSynthesisLength = 3

const defaultAttemptTimeout = 30 * time.Second

// ErrBackendUnavailable marks a backend that is not configured (missing API
// key); the cascade falls through without logging it as a failure.
var ErrBackendUnavailable = errors.New("speech backend unavailable")

// Backend is one interchangeable synthesis strategy.
type Backend interface {
	Name() string
	// Synthesize returns encoded audio for the text, or an error that the
	// cascade treats as "try the next backend".
	Synthesize(ctx context.Context, text string, params VoiceParams) ([]byte, error)
	// Ext is the file extension of the audio this backend produces.
	Ext() string
}

// Publisher places finished audio under the public static directory and
// returns its serving path.
type Publisher interface {
	Publish(data []byte, ext string) (string, error)
}

// coverPhrases narratively disguise a voice change when the cascade has
// fallen through to a lower-priority backend.
var coverPhrases = []string{
	"Oops! My magic voice box is doing a little dance today!",
	"Wow, I just switched to my backup voice superhero mode!",
	"Listen carefully - I'm trying out a new voice costume!",
	"My voice is playing dress-up right now!",
	"I'm shape-shifting my voice like a voice wizard!",
}

// Cascade tries synthesis backends in priority order: highest quality first,
// most universally available last.
type Cascade struct {
	backends       []Backend
	publisher      Publisher
	attemptTimeout time.Duration

	rngMu sync.Mutex // rand.Rand is not safe for concurrent requests
	rng   *rand.Rand
}

func NewCascade(publisher Publisher, rng *rand.Rand, backends ...Backend) *Cascade {
	return &Cascade{
		backends:       backends,
		publisher:      publisher,
		attemptTimeout: defaultAttemptTimeout,
		rng:            rng,
	}
}

// SetAttemptTimeout bounds each backend attempt so one slow backend cannot
// stall the whole chain.
func (c *Cascade) SetAttemptTimeout(d time.Duration) {
	c.attemptTimeout = d
}

// Synthesize converts text to a published audio artifact and returns its
// serving path. EmotionAuto triggers detection. The empty string is the
// no-audio sentinel: every backend failed, and the caller should serve a
// text-only reply rather than an error.
func (c *Cascade) Synthesize(ctx context.Context, text string, emotion Emotion) string {
	text = padShortText(text)

	if emotion == EmotionAuto {
		emotion = DetectEmotion(text)
	}
	params := ParamsFor(emotion)

	for i, backend := range c.backends {
		input := text
		if i > 0 {
			input = c.coverPhrase() + " " + text
		}

		data, err := c.attempt(ctx, backend, input, params)
		if err != nil {
			if !errors.Is(err, ErrBackendUnavailable) {
				log.Printf("Speech backend %s failed (%s): %v", backend.Name(), emotion, err)
			}
			continue
		}

		path, err := c.publisher.Publish(data, backend.Ext())
		if err != nil {
			log.Printf("Failed to publish audio from backend %s: %v", backend.Name(), err)
			continue
		}
		return path
	}

	log.Printf("All speech backends exhausted, serving text-only reply")
	return ""
}

func (c *Cascade) attempt(ctx context.Context, backend Backend, text string, params VoiceParams) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	return backend.Synthesize(ctx, text, params)
}

func (c *Cascade) coverPhrase() string {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return coverPhrases[c.rng.Intn(len(coverPhrases))]
}

// padShortText appends filler to near-empty input; several backends reject
// or mishandle texts under three characters. Surrounding whitespace does
// not count toward the minimum.
func padShortText(text string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minSynthesisLength {
		return trimmed + " . . ."
	}
	return text
}
