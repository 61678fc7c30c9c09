package handlers

import (
	"net/http"

	"mindbloom-backend/application/services"
	pkgerrors "mindbloom-backend/pkg/errors"

	"go.uber.org/zap"
)

// AuthHandler serves account registration, profiles and caregiver assignment.
type AuthHandler struct {
	base
	users *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{base: newBase(errs, logger), users: users}
}

type assignRequest struct {
	PatientID string `json:"patient_id" validate:"required,max=100"`
}

// Register handles POST /auth/register. It answers 201 for a new account
// and 200 when the caller was already registered.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.RegisterRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, created, err := h.users.Register(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if created {
		h.logger.Info("User registered", zap.String("userID", user.ID), zap.String("role", string(user.Role)))
		h.created(w, user)
		return
	}
	h.ok(w, user)
}

// Profile handles GET /auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.users.Profile(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, user)
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req services.ProfileUpdate
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, user)
}

// ListUsers handles GET /auth/users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, err := h.users.List(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, users)
}

// AssignCaregiver handles POST /auth/caregiver/assign
func (h *AuthHandler) AssignCaregiver(w http.ResponseWriter, r *http.Request) {
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
	user, err := h.users.AssignCaregiver(r.Context(), actor, req.PatientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, user)
}

// CaregiverPatients handles GET /auth/caregiver/patients
func (h *AuthHandler) CaregiverPatients(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	patients, err := h.users.CaregiverPatients(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, patients)
}
