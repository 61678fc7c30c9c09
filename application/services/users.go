package services

import (
	"context"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	pkgerrors "mindbloom-backend/pkg/errors"

	"go.uber.org/zap"
)

// RegisterRequest completes an account for the token's subject.
type RegisterRequest struct {
	Name string        `json:"name" validate:"omitempty,max=200"`
	Role entities.Role `json:"role" validate:"omitempty,oneof=user patient caregiver"`
}

// ProfileUpdate changes the caller's own account.
type ProfileUpdate struct {
	Name    *string           `json:"name" validate:"omitempty,min=1,max=200"`
	Profile map[string]string `json:"profile"`
}

// UserService manages accounts and caregiver assignment.
type UserService struct {
	Base
	repos  *ports.Repositories
	access *AccessPolicy
}

// NewUserService creates the service.
func NewUserService(base Base, repos *ports.Repositories, access *AccessPolicy) *UserService {
	return &UserService{Base: base, repos: repos, access: access}
}

// Register creates the caller's account. Registering again returns the
// existing account unchanged; created reports which case happened. Patient
// and caregiver accounts also get a profile sharing the account ID.
func (s *UserService) Register(ctx context.Context, actor *Actor, req RegisterRequest) (user *entities.User, created bool, err error) {
	if err := requireActor(actor); err != nil {
		return nil, false, err
	}
	existing, err := s.repos.Users.GetByID(ctx, actor.UserID)
	if err == nil {
		return existing, false, nil
	}
	if !pkgerrors.IsNotFound(err) {
		return nil, false, err
	}

	name := req.Name
	if name == "" {
		name = actor.Name
	}
	if actor.Email == "" {
		return nil, false, pkgerrors.NewValidationError("token carries no email")
	}
	now := s.now()
	user = entities.NewUser(actor.UserID, actor.Email, name, req.Role, now)
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, false, err
	}

	switch user.Role {
	case entities.RolePatient:
		err = s.repos.Patients.Save(ctx, &entities.Patient{
			ID: user.ID, Name: user.Name, Email: user.Email, CreatedAt: now, UpdatedAt: now,
		})
	case entities.RoleCaregiver:
		err = s.repos.Caregivers.Save(ctx, &entities.Caregiver{
			ID: user.ID, Name: user.Name, Email: user.Email, Patients: []string{}, CreatedAt: now, UpdatedAt: now,
		})
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(err, "failed to create profile")
	}

	s.created("user")
	s.log().Info("User registered", zap.String("userID", user.ID), zap.String("role", string(user.Role)))
	return user, true, nil
}

// Profile returns the caller's account.
func (s *UserService) Profile(ctx context.Context, actor *Actor) (*entities.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repos.Users.GetByID(ctx, actor.UserID)
}

// UpdateProfile changes the caller's name and merges profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, actor *Actor, req ProfileUpdate) (*entities.User, error) {
	user, err := s.Profile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if user.Profile == nil {
		user.Profile = map[string]string{}
	}
	for k, v := range req.Profile {
		if v == "" {
			delete(user.Profile, k)
			continue
		}
		user.Profile[k] = v
	}
	user.UpdatedAt = s.now()
	if err := s.repos.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns every account. Admin only.
func (s *UserService) List(ctx context.Context, actor *Actor) ([]*entities.User, error) {
	if err := s.access.Admin(ctx, actor); err != nil {
		return nil, err
	}
	return s.repos.Users.List(ctx)
}

// AssignCaregiver puts patientID under the calling caregiver. The patient's
// account and profile, when they exist, record the caregiver.
func (s *UserService) AssignCaregiver(ctx context.Context, actor *Actor, patientID string) (*entities.User, error) {
	if err := s.access.Caregiver(ctx, actor); err != nil {
		return nil, err
	}
	if patientID == "" || patientID == actor.UserID {
		return nil, pkgerrors.NewValidationError("a different patient_id is required")
	}
	caregiver, err := s.repos.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	patientUser, err := s.repos.Users.GetByID(ctx, patientID)
	patient, perr := s.repos.Patients.GetByID(ctx, patientID)
	if err != nil && perr != nil {
		return nil, pkgerrors.NewNotFoundError("patient")
	}

	caregiver.AddPatient(patientID, now)
	if err := s.repos.Users.Save(ctx, caregiver); err != nil {
		return nil, err
	}
	if patientUser != nil {
		patientUser.CaregiverID = caregiver.ID
		patientUser.UpdatedAt = now
		if err := s.repos.Users.Save(ctx, patientUser); err != nil {
			return nil, err
		}
	}
	if patient != nil {
		if err := assignProfiles(ctx, s.repos, patient, caregiver.ID, now); err != nil {
			return nil, err
		}
	}

	s.log().Info("Caregiver assigned", zap.String("caregiverID", caregiver.ID), zap.String("patientID", patientID))
	return caregiver, nil
}

// CaregiverPatients returns the profiles of the caller's patients.
func (s *UserService) CaregiverPatients(ctx context.Context, actor *Actor) ([]*entities.Patient, error) {
	if err := s.access.Caregiver(ctx, actor); err != nil {
		return nil, err
	}
	ids := map[string]bool{}
	var order []string
	add := func(list []string) {
		for _, id := range list {
			if !ids[id] {
				ids[id] = true
				order = append(order, id)
			}
		}
	}

	user, err := s.repos.Users.GetByID(ctx, actor.UserID)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}
	if user != nil {
		add(user.Patients)
	}
	profile, err := s.repos.Caregivers.GetByID(ctx, actor.UserID)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}
	if profile != nil {
		add(profile.Patients)
	}
	return loadPatients(ctx, s.repos.Patients, order)
}

func loadPatients(ctx context.Context, repo ports.PatientRepository, ids []string) ([]*entities.Patient, error) {
	out := make([]*entities.Patient, 0, len(ids))
	for _, id := range ids {
		p, err := repo.GetByID(ctx, id)
		if pkgerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
