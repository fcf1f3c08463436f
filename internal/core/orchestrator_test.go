package core

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petpal/internal/speech"
	"petpal/internal/store"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type fakeSynth struct {
	path  string
	texts []string
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string, emotion speech.Emotion) string {
	s.texts = append(s.texts, text)
	return s.path
}

type fakeHistory struct {
	saved   map[string][]store.Turn
	loadErr error
	saveErr error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{saved: make(map[string][]store.Turn)}
}

func (h *fakeHistory) LoadHistory(userID string) ([]store.Turn, error) {
	if h.loadErr != nil {
		return nil, h.loadErr
	}
	return h.saved[userID], nil
}

func (h *fakeHistory) SaveHistory(userID string, turns []store.Turn) error {
	if h.saveErr != nil {
		return h.saveErr
	}
	h.saved[userID] = turns
	return nil
}

func newTestOrchestrator(gen *fakeGenerator, synth *fakeSynth, history *fakeHistory) *Orchestrator {
	return NewOrchestrator(
		history,
		NewUserContextTracker(),
		NewThemeRotator(rand.New(rand.NewSource(7))),
		gen,
		synth,
		&PromptBuilder{PetName: "Whiskers"},
	)
}

func TestHandleConversationMode(t *testing.T) {
	gen := &fakeGenerator{reply: "  Meow! What a fun day! 😊  "}
	synth := &fakeSynth{path: "/static/out.mp3"}
	history := newFakeHistory()

	o := newTestOrchestrator(gen, synth, history)
	reply := o.Handle(context.Background(), "mia", "I played with my dog today")

	assert.Equal(t, "Meow! What a fun day! 😊", reply.Text, "generation output is trimmed")
	assert.Equal(t, "/static/out.mp3", reply.AudioURL)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "mia")
	assert.Contains(t, gen.prompts[0], "animals", "profile interests reach the prompt")
	assert.NotContains(t, gen.prompts[0], "Requested theme")

	// Both turns of the exchange were persisted.
	turns := history.saved["mia"]
	require.Len(t, turns, 2)
	assert.Equal(t, store.RoleUser, turns[0].Role)
	assert.Equal(t, "I played with my dog today", turns[0].Content)
	assert.Equal(t, store.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Meow! What a fun day! 😊", turns[1].Content)
}

func TestHandleStoryMode(t *testing.T) {
	gen := &fakeGenerator{reply: "Once upon a time..."}
	o := newTestOrchestrator(gen, &fakeSynth{}, newFakeHistory())

	o.Handle(context.Background(), "leo", "please tell me a story about adventure")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Requested theme:")
	assert.Contains(t, gen.prompts[0], "wonderful storyteller")
}

func TestStoryTriggerDetection(t *testing.T) {
	tests := []struct {
		input string
		story bool
	}{
		{"Tell me a story!", true},
		{"a BEDTIME STORY please", true},
		{"can you tell a story", true},
		{"make up a story for me", true},
		{"I like stores", false},
		{"how was your day", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.story, isStoryRequest(tt.input), "input: %s", tt.input)
	}
}

func TestHandleGenerationFailureDegrades(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model quota exceeded")}
	synth := &fakeSynth{path: "/static/should-not-appear.mp3"}
	history := newFakeHistory()

	o := newTestOrchestrator(gen, synth, history)
	reply := o.Handle(context.Background(), "mia", "hello")

	assert.Equal(t, apologeticReply, reply.Text)
	assert.Empty(t, reply.AudioURL, "no audio is synthesized for the apology")
	assert.Empty(t, synth.texts)

	// The transcript still records what the child actually heard.
	turns := history.saved["mia"]
	require.Len(t, turns, 2)
	assert.Equal(t, apologeticReply, turns[1].Content)
}

func TestHandleNoAudioSentinelIsNotAnError(t *testing.T) {
	gen := &fakeGenerator{reply: "hi there"}
	synth := &fakeSynth{path: ""} // cascade exhausted
	history := newFakeHistory()

	o := newTestOrchestrator(gen, synth, history)
	reply := o.Handle(context.Background(), "mia", "hello friend")

	assert.Equal(t, "hi there", reply.Text)
	assert.Empty(t, reply.AudioURL)
	assert.Len(t, history.saved["mia"], 2, "the turn still completes")
}

func TestHandlePersistenceFailureIsBestEffort(t *testing.T) {
	gen := &fakeGenerator{reply: "hi there"}
	history := newFakeHistory()
	history.loadErr = errors.New("disk on fire")
	history.saveErr = errors.New("disk still on fire")

	o := newTestOrchestrator(gen, &fakeSynth{path: "/static/a.mp3"}, history)
	reply := o.Handle(context.Background(), "mia", "hello friend")

	assert.Equal(t, "hi there", reply.Text)
	assert.Equal(t, "/static/a.mp3", reply.AudioURL)
}

func TestHandleLoadFailureKeepsExistingTranscript(t *testing.T) {
	gen := &fakeGenerator{reply: "hi there"}
	history := newFakeHistory()
	for i := 0; i < 5; i++ {
		history.saved["mia"] = append(history.saved["mia"],
			store.Turn{Role: store.RoleUser, Content: "earlier question"},
			store.Turn{Role: store.RoleAssistant, Content: "earlier answer"},
		)
	}
	history.loadErr = errors.New("database is locked")

	o := newTestOrchestrator(gen, &fakeSynth{path: "/static/a.mp3"}, history)
	reply := o.Handle(context.Background(), "mia", "hello friend")

	assert.Equal(t, "hi there", reply.Text, "the exchange itself still succeeds")

	// Saves replace the whole record, so writing without the prior turns
	// would shrink the transcript to this one exchange. It must stay put.
	require.Len(t, history.saved["mia"], 10)
	assert.Equal(t, "earlier question", history.saved["mia"][0].Content)
}

func TestHandleEmbedsRecentHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "nice"}
	history := newFakeHistory()
	for i := 0; i < 8; i++ {
		history.saved["mia"] = append(history.saved["mia"],
			store.Turn{Role: store.RoleUser, Content: "old message"},
			store.Turn{Role: store.RoleAssistant, Content: "old reply"},
		)
	}
	history.saved["mia"] = append(history.saved["mia"],
		store.Turn{Role: store.RoleUser, Content: "the newest question"})

	o := newTestOrchestrator(gen, &fakeSynth{}, history)
	o.Handle(context.Background(), "mia", "and another thing")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "the newest question")
	// Only the tail of the log is replayed.
	assert.Equal(t, recentTurnsInPrompt-1, strings.Count(gen.prompts[0], "old"))
}

func TestStoryWrapsTopic(t *testing.T) {
	gen := &fakeGenerator{reply: "a story"}
	o := newTestOrchestrator(gen, &fakeSynth{}, newFakeHistory())

	o.Story(context.Background(), "leo", "dinosaurs")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Tell me a story about dinosaurs")
}

func TestLaunchAndAskKids(t *testing.T) {
	gen := &fakeGenerator{reply: "Meow! Welcome!"}
	synth := &fakeSynth{path: "/static/w.mp3"}
	o := newTestOrchestrator(gen, synth, newFakeHistory())

	reply := o.Launch(context.Background())
	assert.Equal(t, "Meow! Welcome!", reply.Text)
	assert.Equal(t, "/static/w.mp3", reply.AudioURL)

	reply = o.AskKids(context.Background())
	assert.Equal(t, "Meow! Welcome!", reply.Text)
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "ask the child one short, playful question")
}
