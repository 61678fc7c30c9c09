package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
)

const maxPromptMemoryChars = 400

type llmRelevance struct {
	RelevantMemories []struct {
		MemoryID        string  `json:"memory_id"`
		RelevanceScore  float64 `json:"relevance_score"`
		Connection      string  `json:"connection"`
		SuggestedPrompt string  `json:"suggested_prompt"`
	} `json:"relevant_memories"`
	EmotionalTheme    string `json:"emotional_theme"`
	SuggestedFollowUp string `json:"suggested_follow_up"`
}

// RankMemoriesWithLLM asks gen which memories relate to the response. Unknown
// memory ids are dropped, scores are clamped to [0, MaxScore] and at most
// MaxRelevantMemories are kept. Callers fall back to RankMemories on error.
func RankMemoriesWithLLM(ctx context.Context, gen ports.TextGenerator, question, response string, memories []*entities.Memory) (RelevanceResult, error) {
	if len(memories) == 0 {
		return RankMemories(Analyze(response), nil), nil
	}

	var out llmRelevance
	if err := gen.GenerateJSON(ctx, relevancePrompt(question, response, memories), &out); err != nil {
		return RelevanceResult{}, err
	}

	byID := make(map[string]*entities.Memory, len(memories))
	for _, m := range memories {
		byID[m.ID] = m
	}

	result := RelevanceResult{
		RelevantMemories:  []RelevantMemory{},
		EmotionalTheme:    strings.ToLower(strings.TrimSpace(out.EmotionalTheme)),
		SuggestedFollowUp: strings.TrimSpace(out.SuggestedFollowUp),
		Strategy:          StrategyLLM,
	}
	seen := make(map[string]bool)
	for _, item := range out.RelevantMemories {
		m, ok := byID[item.MemoryID]
		if !ok || seen[item.MemoryID] {
			continue
		}
		seen[item.MemoryID] = true

		prompt := strings.TrimSpace(item.SuggestedPrompt)
		if prompt == "" {
			prompt = MemoryPrompt(m.Title)
		}
		result.RelevantMemories = append(result.RelevantMemories, RelevantMemory{
			MemoryID:        m.ID,
			MemoryTitle:     m.Title,
			RelevanceScore:  round1(math.Max(0, math.Min(item.RelevanceScore, MaxScore))),
			Connection:      strings.TrimSpace(item.Connection),
			SuggestedPrompt: prompt,
		})
	}
	sort.SliceStable(result.RelevantMemories, func(i, j int) bool {
		return result.RelevantMemories[i].RelevanceScore > result.RelevantMemories[j].RelevanceScore
	})
	if len(result.RelevantMemories) > MaxRelevantMemories {
		result.RelevantMemories = result.RelevantMemories[:MaxRelevantMemories]
	}

	if result.EmotionalTheme == "" {
		result.EmotionalTheme = string(Analyze(response).Tone)
	}
	if result.SuggestedFollowUp == "" {
		result.SuggestedFollowUp = followUpFor(Analyze(response), result.RelevantMemories)
	}
	return result, nil
}

func relevancePrompt(question, response string, memories []*entities.Memory) string {
	var b strings.Builder
	b.WriteString("You help a caregiver connect what a person with dementia just said to memories they shared before.\n")
	fmt.Fprintf(&b, "Interview question: %q\n", question)
	fmt.Fprintf(&b, "Their answer: %q\n\n", response)
	b.WriteString("Stored memories:\n")
	for _, m := range memories {
		content := m.Content
		if runes := []rune(content); len(runes) > maxPromptMemoryChars {
			content = string(runes[:maxPromptMemoryChars]) + "..."
		}
		fmt.Fprintf(&b, "- id=%s title=%q mood=%s: %s\n", m.ID, m.Title, m.Mood, content)
	}
	fmt.Fprintf(&b, "\nReturn JSON with keys relevant_memories (at most %d items, each with memory_id, "+
		"relevance_score from 0 to 10, connection, suggested_prompt), emotional_theme (one of happy, sad, "+
		"excited, calm, anxious, neutral) and suggested_follow_up. Use only ids from the list.", MaxRelevantMemories)
	return b.String()
}
