package analysis

import (
	"testing"
	"time"

	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssess_MemoryType(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     entities.MemoryType
	}{
		{"event", "I remember when I was ten we moved to Ohio.", entities.MemoryEpisodic},
		{"skill", "My mother taught me to knead the dough.", entities.MemoryProcedural},
		{"fact", "Paris is the capital of France.", entities.MemorySemantic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Assess(tt.response).MemoryType)
		})
	}
}

func TestAssess_ScoresInRange(t *testing.T) {
	a := Assess("I remember every summer we drove to Lake George with my father and brother. " +
		"We stayed in a little cabin because it was cheap, and then we fished all day. " +
		"I was so happy, it was wonderful and I love thinking about it. In 1962 we caught a huge trout!")

	for _, v := range []float64{a.MemoryRecall, a.EmotionalEngagement, a.CognitiveCoherence} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, MaxScore)
	}
	assert.Equal(t, valueobjects.MoodHappy, a.EmotionalTone)
	assert.Equal(t, entities.MemoryEpisodic, a.MemoryType)
	assert.Contains(t, a.Themes, "family")
	assert.GreaterOrEqual(t, a.MemoryRecall, 7.0)
	assert.NotEmpty(t, a.Observations)
	assert.NotEmpty(t, a.Recommendations)
}

func TestAssess_Empty(t *testing.T) {
	a := Assess("   ")

	assert.Zero(t, a.MemoryRecall)
	assert.Zero(t, a.EmotionalEngagement)
	assert.Zero(t, a.CognitiveCoherence)
	assert.Equal(t, []string{"No answer was given."}, a.Observations)
	assert.Equal(t, []string{}, a.Themes)
	assert.Equal(t, []string{}, a.Keywords)
}

func TestRecommend_TargetsWeakestSignal(t *testing.T) {
	recs := Recommend(8, 3, 8)
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "people and feelings")
	assert.Contains(t, recs[1], "care team")

	recs = Recommend(9, 9, 8)
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "one thing at a time")
	assert.Contains(t, recs[1], "Keep up")
}

func TestRealTimeFeedback(t *testing.T) {
	brief := RealTimeFeedback("Yes.")
	assert.Equal(t, "brief", brief.ResponseQuality)
	assert.Equal(t, "low", brief.EngagementLevel)
	assert.Equal(t, "neutral", brief.EmotionalTone)
	assert.Equal(t, genericFollowUps, brief.FollowUpQuestions)

	rich := RealTimeFeedback(bakingAnswer)
	assert.Equal(t, "good", rich.ResponseQuality)
	assert.Equal(t, "medium", rich.EngagementLevel)
	assert.Equal(t, "happy", rich.EmotionalTone)
	assert.Equal(t, []string{Themes[0].FollowUp, Themes[2].FollowUp, Themes[3].FollowUp}, rich.FollowUpQuestions)
	assert.NotEmpty(t, rich.Encouragement)
}

func TestSummarize(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []*entities.ResponseAnalysis{
		{MemoryRecall: 6, EmotionalEngagement: 8, CognitiveCoherence: 7, EmotionalTone: valueobjects.MoodHappy,
			MemoryType: entities.MemoryEpisodic, Themes: []string{"family", "home"}, CreatedAt: t0.Add(time.Hour)},
		{MemoryRecall: 4, EmotionalEngagement: 6, CognitiveCoherence: 5, EmotionalTone: valueobjects.MoodHappy,
			MemoryType: entities.MemorySemantic, Themes: []string{"family", "food"}, CreatedAt: t0},
		{MemoryRecall: 5, EmotionalEngagement: 4, CognitiveCoherence: 6, EmotionalTone: valueobjects.MoodCalm,
			Themes: []string{"home", "family"}, CreatedAt: t0.Add(2 * time.Hour)},
	}

	s, ok := Summarize("p1", "s1", records)
	require.True(t, ok)

	assert.Equal(t, 3, s.ResponseCount)
	assert.Equal(t, Scores{MemoryRecall: 5, EmotionalEngagement: 6, CognitiveCoherence: 6, Overall: 5.7}, s.AverageScores)
	assert.Equal(t, AssessmentFair, s.OverallAssessment)
	assert.Equal(t, []string{"family", "home", "food"}, s.DominantThemes)
	assert.Equal(t, map[string]int{"happy": 2, "calm": 1}, s.ToneDistribution)
	assert.Equal(t, map[string]int{"episodic": 1, "semantic": 1}, s.MemoryTypes)
	assert.Equal(t, t0, s.From)
	assert.Equal(t, t0.Add(2*time.Hour), s.To)
	require.Len(t, s.Recommendations, 2)
	assert.Equal(t, "Build the next session around family, home and food, which came up most often.", s.Recommendations[1])
}

func TestSummarize_NoRecords(t *testing.T) {
	_, ok := Summarize("p1", "", nil)
	assert.False(t, ok)
}
