package analysis

import "mindbloom-backend/domain/core/valueobjects"

// Feedback is the live guidance shown to the interviewer after each answer.
type Feedback struct {
	ResponseQuality   string   `json:"response_quality"`
	EngagementLevel   string   `json:"engagement_level"`
	EmotionalTone     string   `json:"emotional_tone"`
	FollowUpQuestions []string `json:"follow_up_questions"`
	Encouragement     string   `json:"encouragement"`
}

// RealTimeFeedback rates an answer and suggests up to three follow-up questions.
func RealTimeFeedback(response string) Feedback {
	f := Analyze(response)
	fb := Feedback{
		EmotionalTone: string(f.Tone),
	}

	switch {
	case f.Count < 10:
		fb.ResponseQuality = "brief"
		fb.Encouragement = "Take your time. Even small details are worth sharing."
	case f.Count < 40:
		fb.ResponseQuality = "good"
		fb.Encouragement = "That's a lovely memory. Thank you for sharing it."
	default:
		fb.ResponseQuality = "detailed"
		fb.Encouragement = "What a wonderful, detailed memory. You remember it so well."
	}

	switch {
	case f.Tone != valueobjects.MoodNeutral && f.Count >= 20:
		fb.EngagementLevel = "high"
	case f.Tone != valueobjects.MoodNeutral || f.Count >= 20:
		fb.EngagementLevel = "medium"
	default:
		fb.EngagementLevel = "low"
	}

	for _, name := range f.Themes {
		if theme, ok := themeByName(name); ok {
			fb.FollowUpQuestions = append(fb.FollowUpQuestions, theme.FollowUp)
		}
		if len(fb.FollowUpQuestions) == 3 {
			break
		}
	}
	for _, q := range genericFollowUps {
		if len(fb.FollowUpQuestions) == 3 {
			break
		}
		fb.FollowUpQuestions = append(fb.FollowUpQuestions, q)
	}
	return fb
}
