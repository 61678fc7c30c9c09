package entities

import (
	"strings"
	"time"

	"mindbloom-backend/domain/core/valueobjects"
)

// MemorySource records how a memory entered the gallery.
type MemorySource string

const (
	SourceManual          MemorySource = "manual"
	SourceRibbonInterview MemorySource = "ribbon_interview"
)

// Visualization is the generated visual rendering of a memory.
type Visualization struct {
	Description   string   `json:"visual_description" dynamodbav:"visual_description"`
	ColorPalette  []string `json:"color_palette" dynamodbav:"color_palette"`
	SceneElements []string `json:"scene_elements" dynamodbav:"scene_elements"`
	ImagePrompt   string   `json:"image_prompt,omitempty" dynamodbav:"image_prompt,omitempty"`
	ImageURL      string   `json:"image_url,omitempty" dynamodbav:"image_url,omitempty"`
	Generator     string   `json:"generator" dynamodbav:"generator"`
}

// Memory is a stored reminiscence of a patient.
type Memory struct {
	ID            string            `json:"id" dynamodbav:"id"`
	UserID        string            `json:"user_id" dynamodbav:"user_id"`
	PatientID     string            `json:"patient_id" dynamodbav:"patient_id"`
	Title         string            `json:"title" dynamodbav:"title"`
	Content       string            `json:"content" dynamodbav:"content"`
	Mood          valueobjects.Mood `json:"mood" dynamodbav:"mood"`
	Category      string            `json:"category" dynamodbav:"category"`
	Importance    string            `json:"importance" dynamodbav:"importance"`
	Tags          []string          `json:"tags" dynamodbav:"tags"`
	Date          string            `json:"date,omitempty" dynamodbav:"date,omitempty"`
	IsPinned      bool              `json:"is_pinned" dynamodbav:"is_pinned"`
	Source        MemorySource      `json:"source" dynamodbav:"source"`
	Visualization *Visualization    `json:"visualization,omitempty" dynamodbav:"visualization,omitempty"`
	CreatedAt     time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// NaturalKey identifies duplicate memories: same patient, title and day.
func (m *Memory) NaturalKey() string {
	return naturalKey("memory", m.PatientID, m.Title, day(m.CreatedAt))
}

// SearchText is the text relevance scoring compares responses against.
func (m *Memory) SearchText() string {
	var b strings.Builder
	b.WriteString(m.Title)
	b.WriteByte(' ')
	b.WriteString(m.Content)
	for _, tag := range m.Tags {
		b.WriteByte(' ')
		b.WriteString(tag)
	}
	return strings.ToLower(b.String())
}

// TogglePin flips the pinned flag.
func (m *Memory) TogglePin(now time.Time) {
	m.IsPinned = !m.IsPinned
	m.UpdatedAt = now
}
