// Package speech turns reply text into audio through an ordered cascade of
// synthesis backends, degrading gracefully when a backend misbehaves.
package speech

import "strings"

type Emotion string

const (
	// EmotionAuto asks the cascade to detect the emotion from the text.
	EmotionAuto Emotion = ""

	EmotionHappy        Emotion = "happy"
	EmotionSad          Emotion = "sad"
	EmotionExcited      Emotion = "excited"
	EmotionCalm         Emotion = "calm"
	EmotionSinging      Emotion = "singing"
	EmotionStorytelling Emotion = "storytelling"
)

// Markers in the generated text that force a delivery style regardless of
// any keyword hit.
const (
	singingMarker      = "🎵"
	storytellingMarker = "📖"
)

// emotionOrder fixes the scan order; the first emotion with a keyword hit
// wins.
var emotionOrder = []Emotion{
	EmotionHappy,
	EmotionSad,
	EmotionExcited,
	EmotionCalm,
	EmotionSinging,
	EmotionStorytelling,
}

var emotionKeywords = map[Emotion][]string{
	EmotionHappy:        {"yay", "wonderful", "happy", "joy", "excited", "great"},
	EmotionSad:          {"sad", "sorry", "unfortunate", "miss", "difficult"},
	EmotionExcited:      {"wow", "amazing", "awesome", "incredible", "fantastic"},
	EmotionCalm:         {"gentle", "peaceful", "quiet", "soft"},
	EmotionSinging:      {"🎵", "sing", "song", "la la", "tune"},
	EmotionStorytelling: {"once upon a time", "story", "tale", "chapter"},
}

// VoiceParams are the per-emotion synthesis parameters. Backends interpret
// them as closely as their API allows.
type VoiceParams struct {
	VoicePreset string
	Speed       float64
}

var emotionParams = map[Emotion]VoiceParams{
	EmotionHappy:        {VoicePreset: "v2/en_speaker_6", Speed: 1.2},
	EmotionSad:          {VoicePreset: "v2/en_speaker_3", Speed: 0.8},
	EmotionExcited:      {VoicePreset: "v2/en_speaker_9", Speed: 1.3},
	EmotionCalm:         {VoicePreset: "v2/en_speaker_2", Speed: 0.9},
	EmotionSinging:      {VoicePreset: "v2/en_speaker_7", Speed: 1.1},
	EmotionStorytelling: {VoicePreset: "v2/en_speaker_4", Speed: 0.95},
}

// DetectEmotion classifies text for synthesis. Style markers short-circuit
// keyword scanning; with no marker and no keyword hit the answer is calm.
func DetectEmotion(text string) Emotion {
	if strings.Contains(text, singingMarker) {
		return EmotionSinging
	}
	if strings.Contains(text, storytellingMarker) {
		return EmotionStorytelling
	}

	lower := strings.ToLower(text)
	for _, emotion := range emotionOrder {
		for _, kw := range emotionKeywords[emotion] {
			if strings.Contains(lower, kw) {
				return emotion
			}
		}
	}
	return EmotionCalm
}

// ParamsFor returns the synthesis parameters for an emotion, falling back to
// the calm entry for anything unknown.
func ParamsFor(emotion Emotion) VoiceParams {
	if p, ok := emotionParams[emotion]; ok {
		return p
	}
	return emotionParams[EmotionCalm]
}
