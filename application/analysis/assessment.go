package analysis

import (
	"math"
	"strings"
	"unicode"

	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
)

// Assessment is the heuristic reading of one interview answer.
type Assessment struct {
	Themes              []string            `json:"themes"`
	Keywords            []string            `json:"keywords"`
	EmotionalTone       valueobjects.Mood   `json:"emotional_tone"`
	MemoryType          entities.MemoryType `json:"memory_type"`
	MemoryRecall        float64             `json:"memory_recall"`
	EmotionalEngagement float64             `json:"emotional_engagement"`
	CognitiveCoherence  float64             `json:"cognitive_coherence"`
	Observations        []string            `json:"observations"`
	Recommendations     []string            `json:"recommendations"`
}

// Assess scores an answer for memory recall, emotional engagement and
// cognitive coherence on a 0 to 10 scale.
func Assess(response string) Assessment {
	f := Analyze(response)
	a := Assessment{
		Themes:        nonNil(f.Themes),
		Keywords:      nonNil(f.Keywords),
		EmotionalTone: f.Tone,
		MemoryType:    memoryType(f.Text),
	}
	if f.Count == 0 {
		a.Observations = []string{"No answer was given."}
		a.Recommendations = []string{"Try a simpler question or show a familiar photo to start the conversation."}
		return a
	}

	details := countAny(f.Text, timeMarkers) + properNouns(response) + numbers(f.Text)
	a.MemoryRecall = clamp(2 + 0.5*float64(len(f.Keywords)) + float64(details))

	toneHits := 0
	if f.Tone != valueobjects.MoodNeutral {
		toneHits = countAny(f.Text, toneKeywords[f.Tone])
	}
	a.EmotionalEngagement = clamp(2 + 1.5*float64(toneHits) + math.Min(float64(f.Count)/20, 3))

	a.CognitiveCoherence = coherence(f)

	a.Observations = observations(a, f)
	a.Recommendations = Recommend(a.MemoryRecall, a.EmotionalEngagement, a.CognitiveCoherence)
	return a
}

// Recommend suggests care steps that target the weakest of the three signals.
func Recommend(recall, engagement, coherence float64) []string {
	var out []string
	weakest := math.Min(recall, math.Min(engagement, coherence))
	switch weakest {
	case recall:
		out = append(out, "Use photos, music or familiar objects to cue specific memories.")
	case engagement:
		out = append(out, "Ask about people and feelings rather than facts to invite emotional connection.")
	default:
		out = append(out, "Keep questions short and ask one thing at a time.")
	}
	if weakest >= 7 {
		out = append(out, "Keep up the regular reminiscence sessions; responses are rich and well organised.")
	} else if weakest < 4 {
		out = append(out, "Share these observations with the care team at the next visit.")
	}
	return out
}

func memoryType(lower string) entities.MemoryType {
	switch {
	case containsAny(lower, proceduralMarkers):
		return entities.MemoryProcedural
	case containsAny(lower, timeMarkers) || numbers(lower) > 0:
		return entities.MemoryEpisodic
	default:
		return entities.MemorySemantic
	}
}

func coherence(f Features) float64 {
	sentences := strings.FieldsFunc(f.Text, func(r rune) bool { return r == '.' || r == '!' || r == '?' })
	nonEmpty := 0
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		nonEmpty = 1
	}

	score := 5.0
	avg := float64(f.Count) / float64(nonEmpty)
	switch {
	case avg >= 6 && avg <= 25:
		score += 3
	case avg < 4:
		score -= 1
	}

	words := tokenize(f.Text)
	linked := 0
	for _, w := range words {
		for _, c := range connectors {
			if w == c {
				linked++
			}
		}
	}
	score += math.Min(float64(linked), 2)

	if f.Count >= 8 && float64(len(f.Words))/float64(f.Count) < 0.5 {
		score -= 2
	}
	return clamp(score)
}

func observations(a Assessment, f Features) []string {
	var out []string
	if len(a.Themes) > 0 {
		out = append(out, "Talked about "+joinWords(a.Themes)+".")
	}
	if a.EmotionalTone != valueobjects.MoodNeutral {
		out = append(out, "The answer sounded "+string(a.EmotionalTone)+".")
	}
	switch {
	case a.MemoryRecall >= 7:
		out = append(out, "Recalled specific details such as names, places or times.")
	case a.MemoryRecall < 4:
		out = append(out, "Few specific details were recalled.")
	}
	if f.Count < 10 {
		out = append(out, "The answer was brief.")
	}
	return out
}

// properNouns counts capitalised words that do not start a sentence.
func properNouns(text string) int {
	n := 0
	sentenceStart := true
	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, func(r rune) bool { return !unicode.IsLetter(r) })
		if word != "" && !sentenceStart && word != "I" {
			if r := []rune(word)[0]; unicode.IsUpper(r) {
				n++
			}
		}
		sentenceStart = strings.HasSuffix(raw, ".") || strings.HasSuffix(raw, "!") || strings.HasSuffix(raw, "?")
	}
	return n
}

func numbers(lower string) int {
	n := 0
	for _, w := range tokenize(lower) {
		if strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			n++
		}
	}
	return n
}

func clamp(v float64) float64 {
	return round1(math.Max(0, math.Min(v, MaxScore)))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
