package handlers

import (
	"net/http"

	"mindbloom-backend/application/services"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PatientHandler serves patient profiles.
type PatientHandler struct {
	base
	patients *services.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patients *services.PatientService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{base: newBase(errs, logger), patients: patients}
}

// Create handles POST /patients
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.PatientRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	patient, err := h.patients.Create(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, patient)
}

// List handles GET /patients
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	patients, err := h.patients.List(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, patients)
}

// Get handles GET /patients/{id}
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	patient, err := h.patients.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, patient)
}

// Update handles PUT /patients/{id}
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.PatientRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	patient, err := h.patients.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, patient)
}

// Delete handles DELETE /patients/{id}
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.patients.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w, id)
}

// CaregiverHandler serves caregiver profiles and their patient lists.
type CaregiverHandler struct {
	base
	caregivers *services.CaregiverService
}

// NewCaregiverHandler creates a new caregiver handler
func NewCaregiverHandler(caregivers *services.CaregiverService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *CaregiverHandler {
	return &CaregiverHandler{base: newBase(errs, logger), caregivers: caregivers}
}

// Create handles POST /caregivers
func (h *CaregiverHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.CaregiverRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	caregiver, err := h.caregivers.Create(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, caregiver)
}

// List handles GET /caregivers
func (h *CaregiverHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	caregivers, err := h.caregivers.List(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, caregivers)
}

// Get handles GET /caregivers/{id}
func (h *CaregiverHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	caregiver, err := h.caregivers.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, caregiver)
}

// Update handles PUT /caregivers/{id}
func (h *CaregiverHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.CaregiverRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	caregiver, err := h.caregivers.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, caregiver)
}

// Delete handles DELETE /caregivers/{id}
func (h *CaregiverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.caregivers.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w, id)
}

// AssignPatient handles POST /caregivers/{id}/patients
func (h *CaregiverHandler) AssignPatient(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req assignRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	caregiver, err := h.caregivers.AssignPatient(r.Context(), actor, chi.URLParam(r, "id"), req.PatientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, caregiver)
}

// Patients handles GET /caregivers/{id}/patients
func (h *CaregiverHandler) Patients(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	patients, err := h.caregivers.Patients(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, patients)
}
