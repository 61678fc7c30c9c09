package events

import "time"

// Source is the EventBridge source of every event this service publishes.
const Source = "mindbloom.backend"

// DomainEvent is something that has happened and other systems may react to.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"user_id"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

const (
	TypeJournalCreated         = "journal.created"
	TypeMemoryCreated          = "memory.created"
	TypeCalendarEventCompleted = "calendar.event_completed"
	TypeInterviewCompleted     = "interview.completed"
)

// JournalCreated is raised when a journal entry is written.
type JournalCreated struct {
	BaseEvent
	Mood string `json:"mood"`
}

// NewJournalCreated creates a JournalCreated event
func NewJournalCreated(journalID, userID, mood string, at time.Time) JournalCreated {
	return JournalCreated{
		BaseEvent: BaseEvent{AggregateID: journalID, EventType: TypeJournalCreated, Timestamp: at, UserID: userID},
		Mood:      mood,
	}
}

// MemoryCreated is raised when a memory is added to a patient's gallery.
type MemoryCreated struct {
	BaseEvent
	PatientID string `json:"patient_id"`
	Source    string `json:"source"`
}

// NewMemoryCreated creates a MemoryCreated event
func NewMemoryCreated(memoryID, userID, patientID, source string, at time.Time) MemoryCreated {
	return MemoryCreated{
		BaseEvent: BaseEvent{AggregateID: memoryID, EventType: TypeMemoryCreated, Timestamp: at, UserID: userID},
		PatientID: patientID,
		Source:    source,
	}
}

// CalendarEventCompleted is raised when an event is marked done.
type CalendarEventCompleted struct {
	BaseEvent
	Kind string `json:"kind"`
	Date string `json:"date"`
}

// NewCalendarEventCompleted creates a CalendarEventCompleted event
func NewCalendarEventCompleted(eventID, userID, kind, date string, at time.Time) CalendarEventCompleted {
	return CalendarEventCompleted{
		BaseEvent: BaseEvent{AggregateID: eventID, EventType: TypeCalendarEventCompleted, Timestamp: at, UserID: userID},
		Kind:      kind,
		Date:      date,
	}
}

// InterviewCompleted is raised when interview results become a memory.
type InterviewCompleted struct {
	BaseEvent
	PatientID string `json:"patient_id"`
	MemoryID  string `json:"memory_id"`
}

// NewInterviewCompleted creates an InterviewCompleted event
func NewInterviewCompleted(interviewID, userID, patientID, memoryID string, at time.Time) InterviewCompleted {
	return InterviewCompleted{
		BaseEvent: BaseEvent{AggregateID: interviewID, EventType: TypeInterviewCompleted, Timestamp: at, UserID: userID},
		PatientID: patientID,
		MemoryID:  memoryID,
	}
}
