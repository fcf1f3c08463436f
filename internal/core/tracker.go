package core

import (
	"strings"
	"sync"
)

const maxFavoriteThemes = 5

// UserProfile is what the pet remembers about a child within a process run.
type UserProfile struct {
	UserID           string
	Interests        map[string]bool
	FavoriteThemes   []string // most recent first, distinct, capped
	InteractionCount int
}

// InterestList returns the interests as a sorted-insensitive comma list for
// prompt embedding. Order follows the topic table, keeping prompts stable.
func (p *UserProfile) InterestList() string {
	var out []string
	for _, entry := range topicTable {
		if p.Interests[entry.topic] {
			out = append(out, entry.topic)
		}
	}
	return strings.Join(out, ", ")
}

type topicEntry struct {
	topic    string
	keywords []string
}

// topicTable is scanned in order, so which topic front-loads FavoriteThemes
// on a multi-topic message is deterministic. New topics are new rows, not
// new code.
var topicTable = []topicEntry{
	{"animals", []string{"dog", "cat", "pet", "animal", "bird", "fish", "zoo"}},
	{"nature", []string{"tree", "flower", "outside", "park", "garden", "sky"}},
	{"imagination", []string{"magic", "fairy", "dragon", "unicorn", "princess", "superhero"}},
	{"activities", []string{"play", "game", "draw", "paint", "sing", "dance", "run"}},
	{"learning", []string{"school", "read", "book", "learn", "study", "homework"}},
	{"feelings", []string{"happy", "sad", "angry", "scared", "excited", "love"}},
	{"family", []string{"mom", "dad", "sister", "brother", "grandma", "grandpa"}},
	{"food", []string{"pizza", "ice cream", "candy", "chocolate", "cookies"}},
	{"colors", []string{"red", "blue", "green", "yellow", "purple", "pink"}},
	{"numbers", []string{"count", "math", "number", "plus", "minus"}},
}

// UserContextTracker derives interest tags from what children say and keeps
// a bounded recency list of the topics they come back to.
type UserContextTracker struct {
	mu       sync.Mutex
	profiles map[string]*UserProfile
}

func NewUserContextTracker() *UserContextTracker {
	return &UserContextTracker{profiles: make(map[string]*UserProfile)}
}

// Update matches the text against the topic table, records every matched
// topic, and bumps the interaction count exactly once. The returned profile
// is the live one; callers read it within the request.
func (t *UserContextTracker) Update(userID, text string) *UserProfile {
	t.mu.Lock()
	defer t.mu.Unlock()

	profile, ok := t.profiles[userID]
	if !ok {
		profile = &UserProfile{UserID: userID, Interests: make(map[string]bool)}
		t.profiles[userID] = profile
	}

	profile.InteractionCount++

	lower := strings.ToLower(text)
	for _, entry := range topicTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				profile.Interests[entry.topic] = true
				profile.FavoriteThemes = frontLoad(profile.FavoriteThemes, entry.topic)
				break
			}
		}
	}
	return profile
}

// frontLoad moves topic to the front of the list, dropping any earlier
// occurrence, and truncates to the cap.
func frontLoad(themes []string, topic string) []string {
	out := make([]string, 0, len(themes)+1)
	out = append(out, topic)
	for _, th := range themes {
		if th != topic {
			out = append(out, th)
		}
	}
	if len(out) > maxFavoriteThemes {
		out = out[:maxFavoriteThemes]
	}
	return out
}
