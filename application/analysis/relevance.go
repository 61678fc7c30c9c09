package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"mindbloom-backend/domain/core/entities"
)

// Scoring weights and limits of the heuristic relevance strategy.
const (
	ThemeWeight      = 2.0
	KeywordWeight    = 1.0
	MoodWeight       = 1.5
	SharedWordWeight = 0.5
	MaxScore         = 10.0

	// RelevanceThreshold is the score a memory must exceed to be returned.
	// The memory must also share a theme or keyword with the response.
	RelevanceThreshold = 1.0
	// MaxRelevantMemories caps how many memories a lookup returns.
	MaxRelevantMemories = 3
)

const (
	StrategyHeuristic = "heuristic"
	StrategyLLM       = "llm"
	StrategyFallback  = "fallback"
)

// RelevantMemory is one memory related to a response.
type RelevantMemory struct {
	MemoryID        string  `json:"memory_id"`
	MemoryTitle     string  `json:"memory_title"`
	RelevanceScore  float64 `json:"relevance_score"`
	Connection      string  `json:"connection"`
	SuggestedPrompt string  `json:"suggested_prompt"`
}

// RelevanceResult is the answer to a relevance lookup.
type RelevanceResult struct {
	RelevantMemories  []RelevantMemory `json:"relevant_memories"`
	EmotionalTheme    string           `json:"emotional_theme"`
	SuggestedFollowUp string           `json:"suggested_follow_up"`
	Strategy          string           `json:"strategy"`
}

// ScoreBreakdown explains how a memory's score was reached.
type ScoreBreakdown struct {
	Themes      []string
	Keywords    []string
	MoodMatch   bool
	SharedWords int
	Score       float64
}

// Topical reports whether the memory shares a theme or keyword with the
// response. Mood and common words alone do not make a memory related.
func (b ScoreBreakdown) Topical() bool {
	return len(b.Themes) > 0 || len(b.Keywords) > 0
}

// Score rates how related memory is to the analysed response.
func Score(response Features, memory *entities.Memory) ScoreBreakdown {
	text := memory.SearchText()
	var b ScoreBreakdown

	for _, name := range response.Themes {
		if theme, ok := themeByName(name); ok && containsAny(text, theme.Keywords) {
			b.Themes = append(b.Themes, name)
		}
	}
	for _, kw := range response.Keywords {
		if strings.Contains(text, kw) {
			b.Keywords = append(b.Keywords, kw)
		}
	}
	b.MoodMatch = memory.Mood == response.Tone

	seen := make(map[string]struct{})
	for _, w := range tokenize(text) {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := response.Words[w]; ok {
			b.SharedWords++
		}
	}

	score := ThemeWeight*float64(len(b.Themes)) +
		KeywordWeight*float64(len(b.Keywords)) +
		SharedWordWeight*float64(b.SharedWords)
	if b.MoodMatch {
		score += MoodWeight
	}
	b.Score = math.Min(score, MaxScore)
	return b
}

// RankMemories returns the memories most related to response using the
// heuristic strategy: topical scores above RelevanceThreshold, highest first, ties
// in input order, at most MaxRelevantMemories.
func RankMemories(response Features, memories []*entities.Memory) RelevanceResult {
	result := RelevanceResult{
		RelevantMemories: []RelevantMemory{},
		EmotionalTheme:   string(response.Tone),
		Strategy:         StrategyHeuristic,
	}
	if len(memories) == 0 {
		result.SuggestedFollowUp = NoMemoriesFollowUp
		return result
	}

	type scored struct {
		memory    *entities.Memory
		breakdown ScoreBreakdown
	}
	var candidates []scored
	for _, m := range memories {
		b := Score(response, m)
		if b.Topical() && b.Score > RelevanceThreshold {
			candidates = append(candidates, scored{m, b})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].breakdown.Score > candidates[j].breakdown.Score
	})
	if len(candidates) > MaxRelevantMemories {
		candidates = candidates[:MaxRelevantMemories]
	}

	for _, c := range candidates {
		result.RelevantMemories = append(result.RelevantMemories, RelevantMemory{
			MemoryID:        c.memory.ID,
			MemoryTitle:     c.memory.Title,
			RelevanceScore:  round1(c.breakdown.Score),
			Connection:      describeConnection(c.breakdown, c.memory),
			SuggestedPrompt: MemoryPrompt(c.memory.Title),
		})
	}
	result.SuggestedFollowUp = followUpFor(response, result.RelevantMemories)
	return result
}

// MemoryPrompt is the follow-up prompt that invites the patient back to a stored memory.
func MemoryPrompt(title string) string {
	return fmt.Sprintf("This reminds me of your memory about %s. Would you like to share more about that time?", title)
}

func describeConnection(b ScoreBreakdown, m *entities.Memory) string {
	switch {
	case len(b.Themes) > 0:
		return "Both touch on " + joinWords(b.Themes)
	case len(b.Keywords) > 0:
		kws := b.Keywords
		if len(kws) > 3 {
			kws = kws[:3]
		}
		return "Both mention " + joinWords(kws)
	case b.MoodMatch:
		return fmt.Sprintf("Both carry a %s feeling", m.Mood)
	default:
		return "Shares words with your response"
	}
}

func followUpFor(response Features, matches []RelevantMemory) string {
	if len(matches) > 0 {
		return matches[0].SuggestedPrompt
	}
	if len(response.Themes) > 0 {
		if theme, ok := themeByName(response.Themes[0]); ok {
			return theme.FollowUp
		}
	}
	return GenericFollowUp
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	}
	return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
