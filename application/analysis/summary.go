package analysis

import (
	"sort"
	"time"

	"mindbloom-backend/domain/core/entities"
)

// Assessment bands of a summary.
const (
	AssessmentGood           = "good"
	AssessmentFair           = "fair"
	AssessmentNeedsAttention = "needs_attention"
)

// Scores are averaged response signals.
type Scores struct {
	MemoryRecall        float64 `json:"memory_recall"`
	EmotionalEngagement float64 `json:"emotional_engagement"`
	CognitiveCoherence  float64 `json:"cognitive_coherence"`
	Overall             float64 `json:"overall"`
}

// Summary is the caregiver-facing report over a patient's analysed answers.
type Summary struct {
	PatientID         string         `json:"patient_id"`
	SessionID         string         `json:"session_id,omitempty"`
	ResponseCount     int            `json:"response_count"`
	AverageScores     Scores         `json:"average_scores"`
	DominantThemes    []string       `json:"dominant_themes"`
	ToneDistribution  map[string]int `json:"tone_distribution"`
	MemoryTypes       map[string]int `json:"memory_types"`
	OverallAssessment string         `json:"overall_assessment"`
	Recommendations   []string       `json:"recommendations"`
	From              time.Time      `json:"from"`
	To                time.Time      `json:"to"`
}

// Summarize aggregates records. It returns false when there is nothing to summarise.
func Summarize(patientID, sessionID string, records []*entities.ResponseAnalysis) (Summary, bool) {
	if len(records) == 0 {
		return Summary{}, false
	}

	s := Summary{
		PatientID:        patientID,
		SessionID:        sessionID,
		ResponseCount:    len(records),
		ToneDistribution: map[string]int{},
		MemoryTypes:      map[string]int{},
		From:             records[0].CreatedAt,
		To:               records[0].CreatedAt,
	}

	themeCounts := map[string]int{}
	var recall, engagement, coherence float64
	for _, r := range records {
		recall += r.MemoryRecall
		engagement += r.EmotionalEngagement
		coherence += r.CognitiveCoherence
		s.ToneDistribution[string(r.EmotionalTone)]++
		if r.MemoryType != "" {
			s.MemoryTypes[string(r.MemoryType)]++
		}
		for _, t := range r.Themes {
			themeCounts[t]++
		}
		if r.CreatedAt.Before(s.From) {
			s.From = r.CreatedAt
		}
		if r.CreatedAt.After(s.To) {
			s.To = r.CreatedAt
		}
	}

	n := float64(len(records))
	s.AverageScores = Scores{
		MemoryRecall:        round1(recall / n),
		EmotionalEngagement: round1(engagement / n),
		CognitiveCoherence:  round1(coherence / n),
	}
	s.AverageScores.Overall = round1((recall + engagement + coherence) / (3 * n))

	s.DominantThemes = dominantThemes(themeCounts)

	switch {
	case s.AverageScores.Overall >= 7:
		s.OverallAssessment = AssessmentGood
	case s.AverageScores.Overall >= 4:
		s.OverallAssessment = AssessmentFair
	default:
		s.OverallAssessment = AssessmentNeedsAttention
	}
	s.Recommendations = Recommend(s.AverageScores.MemoryRecall, s.AverageScores.EmotionalEngagement, s.AverageScores.CognitiveCoherence)
	if len(s.DominantThemes) > 0 {
		s.Recommendations = append(s.Recommendations,
			"Build the next session around "+joinWords(s.DominantThemes)+", which came up most often.")
	}
	return s, true
}

// dominantThemes returns up to three themes by frequency, ties in vocabulary order.
func dominantThemes(counts map[string]int) []string {
	order := make(map[string]int, len(Themes))
	for i, t := range Themes {
		order[t.Name] = i
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return order[names[i]] < order[names[j]]
	})
	if len(names) > 3 {
		names = names[:3]
	}
	return names
}
