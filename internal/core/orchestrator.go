package core

import (
	"context"
	"log"
	"strings"
	"time"

	"petpal/internal/speech"
	"petpal/internal/store"
)

// apologeticReply is what the child hears when generation fails; internal
// errors never surface raw.
const apologeticReply = "Oops! My imagination took a little break. Can you say that again?"

// storyTriggers switch a request into story mode.
var storyTriggers = []string{
	"tell me a story",
	"can you tell a story",
	"story about",
	"make up a story",
	"bedtime story",
}

// Synthesizer produces a served audio path for text, or the empty no-audio
// sentinel when synthesis is fully degraded.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, emotion speech.Emotion) string
}

// HistoryStore persists per-user conversation logs.
type HistoryStore interface {
	LoadHistory(userID string) ([]store.Turn, error)
	SaveHistory(userID string, turns []store.Turn) error
}

// Reply is the user-facing response envelope.
type Reply struct {
	Text     string
	AudioURL string
}

// Orchestrator drives one conversational turn: context, prompt, generation,
// synthesis, history.
type Orchestrator struct {
	history   HistoryStore
	tracker   *UserContextTracker
	themes    *ThemeRotator
	generator Generator
	synth     Synthesizer
	prompts   *PromptBuilder
}

func NewOrchestrator(history HistoryStore, tracker *UserContextTracker, themes *ThemeRotator, generator Generator, synth Synthesizer, prompts *PromptBuilder) *Orchestrator {
	return &Orchestrator{
		history:   history,
		tracker:   tracker,
		themes:    themes,
		generator: generator,
		synth:     synth,
		prompts:   prompts,
	}
}

// Handle answers a free-text message from a child. History and profile are
// best-effort: their failures are logged, never surfaced.
func (o *Orchestrator) Handle(ctx context.Context, userID, input string) Reply {
	history, histErr := o.history.LoadHistory(userID)
	if histErr != nil {
		log.Printf("Failed to load history for %s, proceeding without it: %v", userID, histErr)
		history = nil
	}

	profile := o.tracker.Update(userID, input)

	var prompt string
	if isStoryRequest(input) {
		theme := o.themes.Next(o.categoryIn(input))
		prompt = o.prompts.Story(profile, theme, input)
	} else {
		prompt = o.prompts.Conversation(profile, history, input)
	}

	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Generation failed for %s: %v", userID, err)
		o.appendTurns(userID, history, histErr, input, apologeticReply)
		return Reply{Text: apologeticReply}
	}
	text = strings.TrimSpace(text)

	audioURL := o.synth.Synthesize(ctx, text, speech.EmotionAuto)

	o.appendTurns(userID, history, histErr, input, text)
	return Reply{Text: text, AudioURL: audioURL}
}

// Story answers an explicit story request for a topic, reusing the normal
// story-mode path.
func (o *Orchestrator) Story(ctx context.Context, userID, topic string) Reply {
	return o.Handle(ctx, userID, "Tell me a story about "+topic)
}

// Launch produces the welcome story played when the app starts. No user
// context is involved.
func (o *Orchestrator) Launch(ctx context.Context) Reply {
	return o.oneShot(ctx, o.prompts.Launch())
}

// AskKids produces a playful question for the child, rotated through an
// unused theme.
func (o *Orchestrator) AskKids(ctx context.Context) Reply {
	theme := o.themes.Next("")
	return o.oneShot(ctx, o.prompts.AskKids(theme))
}

func (o *Orchestrator) oneShot(ctx context.Context, prompt string) Reply {
	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Generation failed: %v", err)
		return Reply{Text: apologeticReply}
	}
	text = strings.TrimSpace(text)
	return Reply{Text: text, AudioURL: o.synth.Synthesize(ctx, text, speech.EmotionAuto)}
}

// appendTurns records the exchange. The reply, degraded or not, is saved as
// spoken so the transcript matches what the child heard. Saves replace the
// full record, so a failed load means the prior transcript is unknown and
// writing would destroy acknowledged turns; the exchange is dropped instead.
func (o *Orchestrator) appendTurns(userID string, history []store.Turn, histErr error, input, reply string) {
	if histErr != nil {
		log.Printf("Skipping history save for %s: prior transcript could not be loaded", userID)
		return
	}

	now := time.Now()
	history = append(history,
		store.Turn{Role: store.RoleUser, Content: input, Timestamp: now},
		store.Turn{Role: store.RoleAssistant, Content: reply, Timestamp: now},
	)
	if err := o.history.SaveHistory(userID, history); err != nil {
		log.Printf("Failed to save history for %s: %v", userID, err)
	}
}

func isStoryRequest(input string) bool {
	lower := strings.ToLower(input)
	for _, trigger := range storyTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// categoryIn finds a theme category mentioned in the input, seeding the
// rotation; an empty result means a fully random pick.
func (o *Orchestrator) categoryIn(input string) string {
	lower := strings.ToLower(input)
	for _, cat := range o.themes.Categories() {
		if strings.Contains(lower, cat) {
			return cat
		}
	}
	return ""
}
