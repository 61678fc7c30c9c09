// Package analysis holds the deterministic text analysis behind memory
// relevance, response assessment, real-time feedback and summaries.
package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"mindbloom-backend/domain/core/valueobjects"
)

// Features is what the analyzer extracts from a piece of text.
type Features struct {
	Text     string            // lower-cased input
	Themes   []string          // matched theme names in vocabulary order
	Keywords []string          // words longer than 3 characters, first-seen order
	Tone     valueobjects.Mood // dominant emotional tone
	Words    map[string]struct{}
	Count    int // total words, with repeats
}

// Analyze extracts themes, keywords and tone from text.
func Analyze(text string) Features {
	lower := strings.ToLower(text)
	words := tokenize(lower)

	f := Features{
		Text:  lower,
		Words: make(map[string]struct{}, len(words)),
		Count: len(words),
	}
	for _, w := range words {
		if _, seen := f.Words[w]; seen {
			continue
		}
		f.Words[w] = struct{}{}
		if utf8.RuneCountInString(w) > 3 {
			f.Keywords = append(f.Keywords, w)
		}
	}
	f.Themes = matchThemes(lower)
	f.Tone = detectTone(lower)
	return f
}

// matchThemes returns the names of themes whose keywords occur in lower.
func matchThemes(lower string) []string {
	var out []string
	for _, theme := range Themes {
		if containsAny(lower, theme.Keywords) {
			out = append(out, theme.Name)
		}
	}
	return out
}

// detectTone picks the mood with the most keyword hits. Ties go to the mood
// listed first in valueobjects.AllMoods.
func detectTone(lower string) valueobjects.Mood {
	best, bestHits := valueobjects.MoodNeutral, 0
	for _, mood := range valueobjects.AllMoods {
		hits := countAny(lower, toneKeywords[mood])
		if hits > bestHits {
			best, bestHits = mood, hits
		}
	}
	return best
}

func tokenize(lower string) []string {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	words := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			words = append(words, f)
		}
	}
	return words
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func countAny(text string, needles []string) int {
	n := 0
	for _, needle := range needles {
		n += strings.Count(text, needle)
	}
	return n
}

func themeByName(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}
