package services

import (
	"context"
	"sort"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/events"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/utils"
)

// EventRequest creates or replaces a calendar event.
type EventRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	EventType   string   `json:"event_type" validate:"required,oneof=medication appointment activity reminder"`
	Date        string   `json:"date" validate:"required,isodate"`
	StartTime   string   `json:"start_time" validate:"omitempty,hhmm"`
	EndTime     string   `json:"end_time" validate:"omitempty,hhmm"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status      string   `json:"status" validate:"omitempty,oneof=pending completed overdue cancelled"`
	Recurrence  string   `json:"recurrence" validate:"omitempty,oneof=daily weekly monthly"`
	Reminders   []string `json:"reminders" validate:"max=10"`
}

// EventFilter narrows a calendar listing. Dates are inclusive YYYY-MM-DD bounds.
type EventFilter struct {
	StartDate string
	EndDate   string
	EventType string
}

// NotesRequest attaches caregiver notes to one of a patient's events.
type NotesRequest struct {
	EventID string `json:"event_id" validate:"required"`
	Notes   string `json:"notes" validate:"max=2000"`
}

// CalendarService manages calendar events.
type CalendarService struct {
	Base
	repo   ports.CalendarRepository
	access *AccessPolicy
}

// NewCalendarService creates the service.
func NewCalendarService(base Base, repo ports.CalendarRepository, access *AccessPolicy) *CalendarService {
	return &CalendarService{Base: base, repo: repo, access: access}
}

// Create stores a new event for the caller.
func (s *CalendarService) Create(ctx context.Context, actor *Actor, req EventRequest) (*entities.CalendarEvent, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := checkTimes(req); err != nil {
		return nil, err
	}
	now := s.now()
	e := &entities.CalendarEvent{
		ID:        newID(),
		UserID:    actor.UserID,
		Status:    entities.StatusPending,
		CreatedAt: now,
	}
	applyEvent(e, req, now)
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.created("calendar_event")
	return e, nil
}

// List returns the caller's events sorted by date then start time.
func (s *CalendarService) List(ctx context.Context, actor *Actor, filter EventFilter) ([]*entities.CalendarEvent, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.list(ctx, actor.UserID, filter)
}

// ForPatient returns a patient's events to one of their caregivers.
func (s *CalendarService) ForPatient(ctx context.Context, actor *Actor, patientID string, filter EventFilter) ([]*entities.CalendarEvent, error) {
	if err := s.access.CaregiverOf(ctx, actor, patientID); err != nil {
		return nil, err
	}
	return s.list(ctx, patientID, filter)
}

func (s *CalendarService) list(ctx context.Context, userID string, filter EventFilter) ([]*entities.CalendarEvent, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.CalendarEvent, 0, len(all))
	for _, e := range all {
		if filter.StartDate != "" && e.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && e.Date > filter.EndDate {
			continue
		}
		if filter.EventType != "" && string(e.EventType) != filter.EventType {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// Overdue returns the caller's open events that are past due, marked overdue.
func (s *CalendarService) Overdue(ctx context.Context, actor *Actor) ([]*entities.CalendarEvent, error) {
	events, err := s.List(ctx, actor, EventFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	today, clock := utils.DateOf(now), utils.ClockOf(now)
	out := make([]*entities.CalendarEvent, 0)
	for _, e := range events {
		if e.IsOverdue(today, clock) {
			e.Status = entities.StatusOverdue
			out = append(out, e)
		}
	}
	return out, nil
}

// Get returns an event the caller may read.
func (s *CalendarService) Get(ctx context.Context, actor *Actor, id string) (*entities.CalendarEvent, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAccess(ctx, s.access, actor, e.UserID); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces an event.
func (s *CalendarService) Update(ctx context.Context, actor *Actor, id string, req EventRequest) (*entities.CalendarEvent, error) {
	if err := checkTimes(req); err != nil {
		return nil, err
	}
	e, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyEvent(e, req, s.now())
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an event.
func (s *CalendarService) Delete(ctx context.Context, actor *Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ToggleComplete flips an event between pending and completed.
func (s *CalendarService) ToggleComplete(ctx context.Context, actor *Actor, id string) (*entities.CalendarEvent, error) {
	e, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	e.ToggleComplete(now)
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	if e.Completed {
		s.publish(ctx, events.NewCalendarEventCompleted(e.ID, e.UserID, string(e.EventType), e.Date, now))
	}
	return e, nil
}

// AddNotes records caregiver notes on one of a patient's events.
func (s *CalendarService) AddNotes(ctx context.Context, actor *Actor, patientID string, req NotesRequest) (*entities.CalendarEvent, error) {
	if err := s.access.CaregiverOf(ctx, actor, patientID); err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if e.UserID != patientID {
		return nil, pkgerrors.NewNotFoundError("calendar event")
	}
	e.CaregiverNotes = req.Notes
	e.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func checkTimes(req EventRequest) error {
	if req.StartTime != "" && req.EndTime != "" && req.EndTime <= req.StartTime {
		return pkgerrors.NewValidationError("end_time must be after start_time")
	}
	return nil
}

func applyEvent(e *entities.CalendarEvent, req EventRequest, now time.Time) {
	e.Title = req.Title
	e.Description = req.Description
	e.EventType = entities.EventType(req.EventType)
	e.Date = req.Date
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.Priority = entities.Priority(req.Priority)
	if e.Priority == "" {
		e.Priority = entities.PriorityMedium
	}
	if req.Status != "" && entities.EventStatus(req.Status) != e.Status {
		switch status := entities.EventStatus(req.Status); status {
		case entities.StatusCompleted:
			if !e.Completed {
				e.ToggleComplete(now)
			}
		case entities.StatusPending:
			if e.Completed {
				e.ToggleComplete(now)
			}
		default:
			e.Status = status
		}
	}
	e.Recurrence = req.Recurrence
	e.Reminders = nonNil(req.Reminders)
	e.UpdatedAt = now
}
