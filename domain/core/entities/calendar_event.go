package entities

import (
	"time"
)

// EventType classifies calendar entries.
type EventType string

const (
	EventMedication  EventType = "medication"
	EventAppointment EventType = "appointment"
	EventActivity    EventType = "activity"
	EventReminder    EventType = "reminder"
)

// Priority ranks calendar entries.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// EventStatus is the lifecycle state of a calendar entry.
type EventStatus string

const (
	StatusPending   EventStatus = "pending"
	StatusCompleted EventStatus = "completed"
	StatusOverdue   EventStatus = "overdue"
	StatusCancelled EventStatus = "cancelled"
)

// CalendarEvent is a dated reminder, appointment, medication or activity.
// Date is YYYY-MM-DD and times are HH:MM, both in the user's local calendar.
type CalendarEvent struct {
	ID             string      `json:"id" dynamodbav:"id"`
	UserID         string      `json:"user_id" dynamodbav:"user_id"`
	Title          string      `json:"title" dynamodbav:"title"`
	Description    string      `json:"description,omitempty" dynamodbav:"description,omitempty"`
	EventType      EventType   `json:"event_type" dynamodbav:"event_type"`
	Date           string      `json:"date" dynamodbav:"date"`
	StartTime      string      `json:"start_time,omitempty" dynamodbav:"start_time,omitempty"`
	EndTime        string      `json:"end_time,omitempty" dynamodbav:"end_time,omitempty"`
	Priority       Priority    `json:"priority" dynamodbav:"priority"`
	Status         EventStatus `json:"status" dynamodbav:"status"`
	Completed      bool        `json:"completed" dynamodbav:"completed"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty" dynamodbav:"completed_at,omitempty"`
	CaregiverNotes string      `json:"caregiver_notes,omitempty" dynamodbav:"caregiver_notes,omitempty"`
	Recurrence     string      `json:"recurrence,omitempty" dynamodbav:"recurrence,omitempty"`
	Reminders      []string    `json:"reminders" dynamodbav:"reminders"`
	CreatedAt      time.Time   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" dynamodbav:"updated_at"`
}

// NaturalKey identifies duplicate events: same owner, title, date and start time.
func (e *CalendarEvent) NaturalKey() string {
	return naturalKey("event", e.UserID, e.Title, e.Date, e.StartTime)
}

// IsOverdue reports whether the event was due before now and is still open.
// today and clock are the caller's current date and HH:MM time.
func (e *CalendarEvent) IsOverdue(today, clock string) bool {
	if e.Completed || e.Status == StatusCancelled {
		return false
	}
	if e.Date < today {
		return true
	}
	return e.Date == today && e.StartTime != "" && e.StartTime < clock
}

// ToggleComplete flips completion between pending and completed.
func (e *CalendarEvent) ToggleComplete(now time.Time) {
	e.Completed = !e.Completed
	if e.Completed {
		e.Status = StatusCompleted
		e.CompletedAt = &now
	} else {
		e.Status = StatusPending
		e.CompletedAt = nil
	}
	e.UpdatedAt = now
}

// Before orders events by date then start time.
func (e *CalendarEvent) Before(other *CalendarEvent) bool {
	if e.Date != other.Date {
		return e.Date < other.Date
	}
	return e.StartTime < other.StartTime
}
