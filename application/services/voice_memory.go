package services

import (
	"strings"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/utils"
)

// DefaultQuestions are used when a flow is created without questions.
var DefaultQuestions = []string{
	"Can you tell me about a happy memory from your childhood?",
	"What's your favorite family tradition?",
	"Do you remember a special place that makes you feel peaceful?",
	"Tell me about someone who was very kind to you.",
	"What's a story that always makes you smile?",
	"Do you remember a time when you felt very proud?",
	"What's your favorite holiday memory?",
	"Tell me about a friend who was important to you.",
	"Do you remember a special meal or food that you loved?",
	"What's a place you visited that you'll never forget?",
}

// CompassionateQuestions drive the guided memory interview for a patient.
var CompassionateQuestions = []string{
	"Hello! I'm here to help you share some special memories. Can you tell me about a happy time from your childhood?",
	"That sounds wonderful! Do you remember any special family traditions that you loved?",
	"I'd love to hear about a place that made you feel peaceful and happy. Can you describe it?",
	"Tell me about someone who was very kind and caring in your life.",
	"What's a story or memory that always makes you smile when you think about it?",
	"Do you remember a time when you felt very proud of something you did?",
	"What's your favorite holiday memory? I'd love to hear about it.",
	"Tell me about a friend who was very important to you.",
	"Do you remember any special meals or foods that you really loved?",
	"What's a place you visited that you'll never forget? Can you tell me about it?",
}

var positiveWords = []string{"happy", "wonderful", "love", "special", "beautiful", "amazing", "great"}

const titleQuestionRunes = 30

// MemoryFromResults turns the answers of a finished interview into a memory
// for patientID. The mood is happy when any answer uses a positive word.
func MemoryFromResults(results *ports.InterviewResults, patientID, userID string, now time.Time) (*entities.Memory, error) {
	if results == nil || len(results.Responses) == 0 {
		return nil, pkgerrors.NewValidationError("interview has no responses yet")
	}

	var content, answers strings.Builder
	for _, qa := range results.Responses {
		content.WriteString("Question: " + qa.Question + "\nAnswer: " + qa.Answer + "\n\n")
		answers.WriteString(strings.ToLower(qa.Answer) + " ")
	}

	mood := valueobjects.MoodNeutral
	for _, w := range positiveWords {
		if strings.Contains(answers.String(), w) {
			mood = valueobjects.MoodHappy
			break
		}
	}

	first := []rune(results.Responses[0].Question)
	if len(first) > titleQuestionRunes {
		first = first[:titleQuestionRunes]
	}

	return &entities.Memory{
		ID:         newID(),
		UserID:     userID,
		PatientID:  patientID,
		Title:      "Voice Memory - " + string(first) + "...",
		Content:    strings.TrimRight(content.String(), "\n"),
		Mood:       mood,
		Category:   "voice_interview",
		Importance: "medium",
		Tags:       []string{"voice", "interview"},
		Date:       utils.DateOf(now),
		Source:     entities.SourceRibbonInterview,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
