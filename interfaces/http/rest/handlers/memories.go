package handlers

import (
	"net/http"

	"mindbloom-backend/application/services"
	"mindbloom-backend/pkg/common"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MemoryHandler serves the memories gallery.
type MemoryHandler struct {
	base
	memories *services.MemoryService
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(memories *services.MemoryService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{base: newBase(errs, logger), memories: memories}
}

func memoryFilter(r *http.Request, patientID string) services.MemoryFilter {
	return services.MemoryFilter{
		PatientID:  patientID,
		Category:   r.URL.Query().Get("category"),
		ListParams: common.ExtractListParams(r),
	}
}

// Create handles POST /memories
func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.MemoryRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	memory, err := h.memories.Create(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, memory)
}

// List handles GET /memories?patient_id=&category=&skip=&limit=
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	memories, info, err := h.memories.List(r.Context(), actor, memoryFilter(r, r.URL.Query().Get("patient_id")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, memories, info)
}

// ForPatient handles GET /memories/caregiver/{patientID}
func (h *MemoryHandler) ForPatient(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	memories, info, err := h.memories.ForPatient(r.Context(), actor, memoryFilter(r, chi.URLParam(r, "patientID")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, memories, info)
}

// Get handles GET /memories/{id}
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	memory, err := h.memories.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, memory)
}

// Update handles PUT /memories/{id}
func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.MemoryRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	memory, err := h.memories.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, memory)
}

// Delete handles DELETE /memories/{id}
func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.memories.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w, id)
}

// TogglePin handles POST /memories/{id}/pin
func (h *MemoryHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	memory, err := h.memories.TogglePin(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, memory)
}

// Visualize handles POST /memories/{id}/visualize
func (h *MemoryHandler) Visualize(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	memory, err := h.memories.Visualize(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, memory)
}
