package handlers

import (
	"net/http"

	"mindbloom-backend/application/services"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RibbonHandler serves voice-interview flows and interviews.
type RibbonHandler struct {
	base
	interviews *services.InterviewService
}

// NewRibbonHandler creates a new ribbon handler
func NewRibbonHandler(interviews *services.InterviewService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *RibbonHandler {
	return &RibbonHandler{base: newBase(errs, logger), interviews: interviews}
}

// CreateFlow handles POST /ribbon/flows
func (h *RibbonHandler) CreateFlow(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.FlowRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	flow, err := h.interviews.CreateFlow(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, flow)
}

// Flows handles GET /ribbon/flows
func (h *RibbonHandler) Flows(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	flows, err := h.interviews.Flows(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, flows)
}

// CreateInterview handles POST /ribbon/interviews
func (h *RibbonHandler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.InterviewRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	interview, err := h.interviews.CreateInterview(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, interview)
}

// Interviews handles GET /ribbon/interviews
func (h *RibbonHandler) Interviews(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	interviews, err := h.interviews.Interviews(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, interviews)
}

// Status handles GET /ribbon/interviews/{id}/status
func (h *RibbonHandler) Status(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	interview, err := h.interviews.Status(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, interview)
}

// Results handles POST /ribbon/interviews/{id}/results
func (h *RibbonHandler) Results(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.ResultsRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.interviews.CompleteWithResults(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, result)
}

// MemoryInterview handles POST /ribbon/memory-interview/{patientID}
func (h *RibbonHandler) MemoryInterview(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	mi, err := h.interviews.MemoryInterview(r.Context(), actor, chi.URLParam(r, "patientID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, mi)
}
