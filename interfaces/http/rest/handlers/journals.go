package handlers

import (
	"net/http"
	"strconv"

	"mindbloom-backend/application/services"
	"mindbloom-backend/pkg/common"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// JournalHandler serves journal entries.
type JournalHandler struct {
	base
	journals *services.JournalService
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(journals *services.JournalService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{base: newBase(errs, logger), journals: journals}
}

func journalFilter(r *http.Request) services.JournalFilter {
	pinned, _ := strconv.ParseBool(r.URL.Query().Get("pinned"))
	return services.JournalFilter{PinnedOnly: pinned, ListParams: common.ExtractListParams(r)}
}

// Create handles POST /journal
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.JournalRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.journals.Create(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, entry)
}

// List handles GET /journal?pinned=&skip=&limit=
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, info, err := h.journals.List(r.Context(), actor, journalFilter(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, entries, info)
}

// ForPatient handles GET /journal/caregiver/{patientID}
func (h *JournalHandler) ForPatient(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, info, err := h.journals.ForPatient(r.Context(), actor, chi.URLParam(r, "patientID"), journalFilter(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, entries, info)
}

// Get handles GET /journal/{id}
func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.journals.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, entry)
}

// Update handles PUT /journal/{id}
func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.JournalRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.journals.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, entry)
}

// Delete handles DELETE /journal/{id}
func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.journals.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w, id)
}

// TogglePin handles POST /journal/{id}/pin
func (h *JournalHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.journals.TogglePin(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, entry)
}
