package handlers

import (
	"net/http"

	"mindbloom-backend/application/services"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CalendarHandler serves calendar events and reminders.
type CalendarHandler struct {
	base
	calendar *services.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendar *services.CalendarService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{base: newBase(errs, logger), calendar: calendar}
}

// eventQuery carries the list filters of the query string.
type eventQuery struct {
	StartDate string `validate:"omitempty,isodate"`
	EndDate   string `validate:"omitempty,isodate"`
	EventType string `validate:"omitempty,oneof=medication appointment activity reminder"`
}

func eventFilter(r *http.Request) (services.EventFilter, error) {
	q := eventQuery{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		EventType: r.URL.Query().Get("event_type"),
	}
	if err := validate(q); err != nil {
		return services.EventFilter{}, err
	}
	return services.EventFilter{StartDate: q.StartDate, EndDate: q.EndDate, EventType: q.EventType}, nil
}

// Create handles POST /calendar
func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.EventRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	event, err := h.calendar.Create(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, event)
}

// List handles GET /calendar?start_date=&end_date=&event_type=
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	filter, err := eventFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	events, err := h.calendar.List(r.Context(), actor, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, events)
}

// Overdue handles GET /calendar/overdue
func (h *CalendarHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	events, err := h.calendar.Overdue(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, events)
}

// ForPatient handles GET /calendar/caregiver/{patientID}
func (h *CalendarHandler) ForPatient(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	filter, err := eventFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	events, err := h.calendar.ForPatient(r.Context(), actor, chi.URLParam(r, "patientID"), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, events)
}

// AddNotes handles POST /calendar/caregiver/{patientID}/notes
func (h *CalendarHandler) AddNotes(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.NotesRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	event, err := h.calendar.AddNotes(r.Context(), actor, chi.URLParam(r, "patientID"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, event)
}

// Get handles GET /calendar/{id}
func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	event, err := h.calendar.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, event)
}

// Update handles PUT /calendar/{id}
func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.EventRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	event, err := h.calendar.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, event)
}

// Delete handles DELETE /calendar/{id}
func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.calendar.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w, id)
}

// ToggleComplete handles POST /calendar/{id}/complete
func (h *CalendarHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	event, err := h.calendar.ToggleComplete(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, event)
}
