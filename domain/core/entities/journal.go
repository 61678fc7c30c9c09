package entities

import (
	"time"

	"mindbloom-backend/domain/core/valueobjects"
)

// JournalInsights are computed from the entry text when it is written.
type JournalInsights struct {
	Sentiment        valueobjects.Mood `json:"sentiment" dynamodbav:"sentiment"`
	KeyThemes        []string          `json:"key_themes" dynamodbav:"key_themes"`
	SuggestedPrompts []string          `json:"suggested_prompts" dynamodbav:"suggested_prompts"`
}

// JournalEntry is a dated free-text entry written by a user.
type JournalEntry struct {
	ID        string            `json:"id" dynamodbav:"id"`
	UserID    string            `json:"user_id" dynamodbav:"user_id"`
	Title     string            `json:"title" dynamodbav:"title"`
	Content   string            `json:"content" dynamodbav:"content"`
	Mood      valueobjects.Mood `json:"mood" dynamodbav:"mood"`
	Tags      []string          `json:"tags" dynamodbav:"tags"`
	MediaURLs []string          `json:"media_urls" dynamodbav:"media_urls"`
	Location  string            `json:"location,omitempty" dynamodbav:"location,omitempty"`
	People    []string          `json:"people" dynamodbav:"people"`
	IsPinned  bool              `json:"is_pinned" dynamodbav:"is_pinned"`
	Insights  *JournalInsights  `json:"ai_insights,omitempty" dynamodbav:"ai_insights,omitempty"`
	CreatedAt time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// NaturalKey identifies duplicate entries: same author, title and day.
func (j *JournalEntry) NaturalKey() string {
	return naturalKey("journal", j.UserID, j.Title, day(j.CreatedAt))
}

// TogglePin flips the pinned flag.
func (j *JournalEntry) TogglePin(now time.Time) {
	j.IsPinned = !j.IsPinned
	j.UpdatedAt = now
}
