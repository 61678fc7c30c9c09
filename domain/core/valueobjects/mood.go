package valueobjects

import "strings"

// Mood is the emotional label attached to journals, memories and analysed responses.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodExcited Mood = "excited"
	MoodCalm    Mood = "calm"
	MoodAnxious Mood = "anxious"
	MoodNeutral Mood = "neutral"
)

// AllMoods lists moods in the order tone detection checks them.
var AllMoods = []Mood{MoodHappy, MoodExcited, MoodCalm, MoodSad, MoodAnxious, MoodNeutral}

// ParseMood normalises s; unknown or empty values become neutral.
func ParseMood(s string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m
	}
	return MoodNeutral
}

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	for _, known := range AllMoods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Mood) String() string { return string(m) }

// Palette returns the colour palette used for visualizations of this mood.
func (m Mood) Palette() []string {
	switch m {
	case MoodHappy:
		return []string{"#FFD166", "#F4A261", "#FFE8A3"}
	case MoodExcited:
		return []string{"#EF476F", "#FF9F1C", "#FFD23F"}
	case MoodCalm:
		return []string{"#8ECAE6", "#A8DADC", "#E9F5DB"}
	case MoodSad:
		return []string{"#577590", "#6D83A6", "#C9D6EA"}
	case MoodAnxious:
		return []string{"#9D8189", "#B8B8D1", "#E2D4D9"}
	default:
		return []string{"#B7B7A4", "#DDBEA9", "#F0EFEB"}
	}
}
