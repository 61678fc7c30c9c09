package services

import (
	"context"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	pkgerrors "mindbloom-backend/pkg/errors"
)

// AccessPolicy decides who may act on a patient's data.
//
// Admins may act on anyone. A patient may act on their own data. A
// caregiver may act on patients listed on their account or on their
// caregiver profile.
type AccessPolicy struct {
	users      ports.UserRepository
	caregivers ports.CaregiverRepository
}

// NewAccessPolicy creates the policy.
func NewAccessPolicy(users ports.UserRepository, caregivers ports.CaregiverRepository) *AccessPolicy {
	return &AccessPolicy{users: users, caregivers: caregivers}
}

// IsAdmin reports whether actor carries the admin role in the token or on the account.
func (p *AccessPolicy) IsAdmin(ctx context.Context, actor *Actor) bool {
	if actor.HasRole(string(entities.RoleAdmin)) {
		return true
	}
	user, err := p.users.GetByID(ctx, actor.UserID)
	return err == nil && user.Role == entities.RoleAdmin
}

// Admin fails with Forbidden unless actor is an admin.
func (p *AccessPolicy) Admin(ctx context.Context, actor *Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !p.IsAdmin(ctx, actor) {
		return pkgerrors.NewForbiddenError("admin role required")
	}
	return nil
}

// Caregiver fails with Forbidden unless actor is a caregiver or admin.
func (p *AccessPolicy) Caregiver(ctx context.Context, actor *Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.HasRole(string(entities.RoleCaregiver), string(entities.RoleAdmin)) {
		return nil
	}
	user, err := p.users.GetByID(ctx, actor.UserID)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return err
	}
	if user != nil && user.IsCaregiver() {
		return nil
	}
	return pkgerrors.NewForbiddenError("caregiver role required")
}

// Patient fails with Forbidden unless actor may act on patientID.
func (p *AccessPolicy) Patient(ctx context.Context, actor *Actor, patientID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if patientID == "" {
		return pkgerrors.NewValidationError("patient_id is required")
	}
	if actor.UserID == patientID || actor.HasRole(string(entities.RoleAdmin)) {
		return nil
	}

	user, err := p.users.GetByID(ctx, actor.UserID)
	switch {
	case err == nil:
		if user.Role == entities.RoleAdmin || (user.IsCaregiver() && user.ManagesPatient(patientID)) {
			return nil
		}
	case !pkgerrors.IsNotFound(err):
		return err
	}

	caregiver, err := p.caregivers.GetByID(ctx, actor.UserID)
	switch {
	case err == nil:
		if caregiver.HasPatient(patientID) {
			return nil
		}
	case !pkgerrors.IsNotFound(err):
		return err
	}
	return pkgerrors.NewForbiddenError("not allowed to access this patient")
}

// CaregiverOf fails unless actor is a caregiver with access to patientID.
func (p *AccessPolicy) CaregiverOf(ctx context.Context, actor *Actor, patientID string) error {
	if err := p.Caregiver(ctx, actor); err != nil {
		return err
	}
	return p.Patient(ctx, actor, patientID)
}
