package entities

import (
	"time"

	"mindbloom-backend/domain/core/valueobjects"
)

// ChatEntry is one exchange with the chat assistant.
type ChatEntry struct {
	ID        string    `json:"id" dynamodbav:"id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Message   string    `json:"message" dynamodbav:"message"`
	Response  string    `json:"response" dynamodbav:"response"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// MediaFile is the metadata of an uploaded file.
type MediaFile struct {
	ID           string    `json:"id" dynamodbav:"id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	OriginalName string    `json:"original_name" dynamodbav:"original_name"`
	StoredName   string    `json:"stored_name" dynamodbav:"stored_name"`
	Size         int64     `json:"size" dynamodbav:"size"`
	ContentType  string    `json:"content_type" dynamodbav:"content_type"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
}

// MemoryType classifies what kind of recall a response shows.
type MemoryType string

const (
	MemoryEpisodic   MemoryType = "episodic"
	MemorySemantic   MemoryType = "semantic"
	MemoryProcedural MemoryType = "procedural"
)

// ResponseAnalysis is the stored assessment of one interview answer. The
// summary generator aggregates these per patient and session.
type ResponseAnalysis struct {
	ID                  string            `json:"id" dynamodbav:"id"`
	PatientID           string            `json:"patient_id" dynamodbav:"patient_id"`
	SessionID           string            `json:"session_id,omitempty" dynamodbav:"session_id,omitempty"`
	Question            string            `json:"question" dynamodbav:"question"`
	Response            string            `json:"response" dynamodbav:"response"`
	Themes              []string          `json:"themes" dynamodbav:"themes"`
	Keywords            []string          `json:"keywords" dynamodbav:"keywords"`
	EmotionalTone       valueobjects.Mood `json:"emotional_tone" dynamodbav:"emotional_tone"`
	MemoryType          MemoryType        `json:"memory_type" dynamodbav:"memory_type"`
	MemoryRecall        float64           `json:"memory_recall" dynamodbav:"memory_recall"`
	EmotionalEngagement float64           `json:"emotional_engagement" dynamodbav:"emotional_engagement"`
	CognitiveCoherence  float64           `json:"cognitive_coherence" dynamodbav:"cognitive_coherence"`
	Observations        []string          `json:"observations" dynamodbav:"observations"`
	Recommendations     []string          `json:"recommendations" dynamodbav:"recommendations"`
	Source              string            `json:"source" dynamodbav:"source"`
	CreatedAt           time.Time         `json:"created_at" dynamodbav:"created_at"`
}
