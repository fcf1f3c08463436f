package core

import (
	"math/rand"
	"sync"
)

// usedThemesCeiling bounds the no-repeat window. Once this many themes have
// been handed out, the rotation resets wholesale.
const usedThemesCeiling = 15

// ThemeRegistry maps a category to its themes. The default registry covers
// the subjects the pet likes to ramble about.
var defaultThemeRegistry = map[string][]string{
	"nature":      {"forest friends", "garden discoveries", "weather wonders", "ocean adventures"},
	"science":     {"rainbow magic", "plant growing", "stars and moon", "simple experiments"},
	"creative":    {"drawing and colors", "music and sounds", "imagination games", "story time"},
	"life_skills": {"being kind", "helping at home", "making friends", "taking care of nature"},
	"animals":     {"forest critters", "pets", "zoo adventures", "ocean life"},
	"adventure":   {"space exploration", "treasure hunt", "magical journey"},
}

// ThemeRotator picks themes at random without repetition within a session
// window, so back-to-back stories stay fresh.
type ThemeRotator struct {
	mu       sync.Mutex
	registry map[string][]string
	used     map[string]bool
	rng      *rand.Rand
}

func NewThemeRotator(rng *rand.Rand) *ThemeRotator {
	return &ThemeRotator{
		registry: defaultThemeRegistry,
		used:     make(map[string]bool),
		rng:      rng,
	}
}

// Categories returns the registry's category names, for keyword matching
// against free-text input.
func (r *ThemeRotator) Categories() []string {
	cats := make([]string, 0, len(r.registry))
	for c := range r.registry {
		cats = append(cats, c)
	}
	return cats
}

// Next picks an unused theme uniformly at random. With a known category the
// pick is scoped to it (falling back to all themes when the category is
// exhausted); with an empty category all themes are candidates. After the
// pick is marked used, reaching the ceiling or running out of unused themes
// clears the whole used set, so the just-picked theme becomes selectable
// again on the very next call.
func (r *ThemeRotator) Next(category string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := r.unused(category)
	if len(candidates) == 0 {
		candidates = r.unused("")
	}

	theme := candidates[r.rng.Intn(len(candidates))]
	r.used[theme] = true

	if len(r.used) >= usedThemesCeiling || len(r.unused("")) == 0 {
		r.used = make(map[string]bool)
	}
	return theme
}

// UsedCount reports the current size of the no-repeat window.
func (r *ThemeRotator) UsedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.used)
}

func (r *ThemeRotator) unused(category string) []string {
	var out []string
	if themes, ok := r.registry[category]; ok {
		for _, t := range themes {
			if !r.used[t] {
				out = append(out, t)
			}
		}
		return out
	}
	for _, themes := range r.registry {
		for _, t := range themes {
			if !r.used[t] {
				out = append(out, t)
			}
		}
	}
	return out
}
