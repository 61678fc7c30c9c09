package ports

import (
	"context"

	"mindbloom-backend/domain/core/entities"
)

// Repositories return pkg/errors NotFound for missing documents and Conflict
// when a Create would duplicate an existing document's natural key. List
// methods return newest first.

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	Save(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
}

// PatientRepository persists patient profiles.
type PatientRepository interface {
	Save(ctx context.Context, patient *entities.Patient) error
	GetByID(ctx context.Context, id string) (*entities.Patient, error)
	List(ctx context.Context) ([]*entities.Patient, error)
	Delete(ctx context.Context, id string) error
}

// CaregiverRepository persists caregiver profiles.
type CaregiverRepository interface {
	Save(ctx context.Context, caregiver *entities.Caregiver) error
	GetByID(ctx context.Context, id string) (*entities.Caregiver, error)
	List(ctx context.Context) ([]*entities.Caregiver, error)
	Delete(ctx context.Context, id string) error
}

// JournalRepository persists journal entries.
type JournalRepository interface {
	Create(ctx context.Context, entry *entities.JournalEntry) error
	Save(ctx context.Context, entry *entities.JournalEntry) error
	GetByID(ctx context.Context, id string) (*entities.JournalEntry, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.JournalEntry, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository persists memories, partitioned by patient.
type MemoryRepository interface {
	Create(ctx context.Context, memory *entities.Memory) error
	Save(ctx context.Context, memory *entities.Memory) error
	GetByID(ctx context.Context, id string) (*entities.Memory, error)
	ListByPatient(ctx context.Context, patientID string) ([]*entities.Memory, error)
	Delete(ctx context.Context, id string) error
}

// CalendarRepository persists calendar events.
type CalendarRepository interface {
	Create(ctx context.Context, event *entities.CalendarEvent) error
	Save(ctx context.Context, event *entities.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*entities.CalendarEvent, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

// InterviewRepository persists interview flows and sessions.
type InterviewRepository interface {
	SaveFlow(ctx context.Context, flow *entities.InterviewFlow) error
	ListFlows(ctx context.Context, createdBy string) ([]*entities.InterviewFlow, error)
	SaveInterview(ctx context.Context, interview *entities.Interview) error
	GetInterview(ctx context.Context, id string) (*entities.Interview, error)
	ListInterviews(ctx context.Context, createdBy string) ([]*entities.Interview, error)
}

// ChatRepository persists chat exchanges.
type ChatRepository interface {
	Save(ctx context.Context, entry *entities.ChatEntry) error
	ListByUser(ctx context.Context, userID string) ([]*entities.ChatEntry, error)
}

// AnalysisRepository persists response analyses for summaries.
type AnalysisRepository interface {
	Save(ctx context.Context, analysis *entities.ResponseAnalysis) error
	ListByPatient(ctx context.Context, patientID string) ([]*entities.ResponseAnalysis, error)
}

// MediaRepository persists upload metadata.
type MediaRepository interface {
	Save(ctx context.Context, file *entities.MediaFile) error
	GetByID(ctx context.Context, id string) (*entities.MediaFile, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.MediaFile, error)
	Delete(ctx context.Context, id string) error
}

// Repositories bundles every store the services need.
type Repositories struct {
	Users      UserRepository
	Patients   PatientRepository
	Caregivers CaregiverRepository
	Journals   JournalRepository
	Memories   MemoryRepository
	Calendar   CalendarRepository
	Interviews InterviewRepository
	Chats      ChatRepository
	Analyses   AnalysisRepository
	Media      MediaRepository
}
