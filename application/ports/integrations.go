package ports

import (
	"context"
	"io"

	"mindbloom-backend/domain/events"
)

// TextGenerator is the LLM used for visualizations, assessments and
// transcription. Implementations return an Unavailable error when they are
// not configured.
type TextGenerator interface {
	Enabled() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateJSON asks for a JSON answer and decodes it into out.
	GenerateJSON(ctx context.Context, prompt string, out any) error
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// FlowRequest describes an interview flow to create at the voice provider.
type FlowRequest struct {
	Name      string
	Questions []string
	Metadata  map[string]string
}

// RemoteFlow is a flow as known by the voice provider.
type RemoteFlow struct {
	ID string
}

// RemoteInterview is an interview as known by the voice provider.
type RemoteInterview struct {
	ID     string
	URL    string
	Status string
}

// QuestionAnswer is one answered question of a finished interview.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// InterviewResults are the transcribed answers of a finished interview.
type InterviewResults struct {
	InterviewID string
	Responses   []QuestionAnswer
}

// VoiceInterviewer runs voice interviews at an external provider.
type VoiceInterviewer interface {
	Enabled() bool
	CreateFlow(ctx context.Context, req FlowRequest) (*RemoteFlow, error)
	CreateInterview(ctx context.Context, flowID string, metadata map[string]string) (*RemoteInterview, error)
	GetInterview(ctx context.Context, id string) (*RemoteInterview, error)
	GetResults(ctx context.Context, id string) (*InterviewResults, error)
}

// EventPublisher delivers domain events to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// FileStore keeps uploaded file contents.
type FileStore interface {
	// Save writes at most maxBytes from r under name and returns the size written.
	Save(ctx context.Context, name string, r io.Reader, maxBytes int64) (int64, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}
