package services

import (
	"context"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	pkgerrors "mindbloom-backend/pkg/errors"

	"go.uber.org/zap"
)

// PatientRequest creates or replaces a patient profile.
type PatientRequest struct {
	Name        string            `json:"name" validate:"required,max=200"`
	Age         int               `json:"age" validate:"omitempty,min=0,max=130"`
	Email       string            `json:"email" validate:"omitempty,email"`
	MedicalInfo map[string]string `json:"medical_info"`
}

// CaregiverRequest creates or replaces a caregiver profile.
type CaregiverRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	Email          string `json:"email" validate:"omitempty,email"`
	Specialization string `json:"specialization" validate:"omitempty,max=200"`
}

// PatientService manages patient profiles.
type PatientService struct {
	Base
	repos  *ports.Repositories
	access *AccessPolicy
}

// NewPatientService creates the service.
func NewPatientService(base Base, repos *ports.Repositories, access *AccessPolicy) *PatientService {
	return &PatientService{Base: base, repos: repos, access: access}
}

// Create stores a new profile. A caregiver creating a profile is assigned to it.
func (s *PatientService) Create(ctx context.Context, actor *Actor, req PatientRequest) (*entities.Patient, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	now := s.now()
	p := &entities.Patient{
		ID:          newID(),
		Name:        req.Name,
		Age:         req.Age,
		Email:       req.Email,
		MedicalInfo: req.MedicalInfo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Patients.Save(ctx, p); err != nil {
		return nil, err
	}

	if s.access.Caregiver(ctx, actor) == nil && !s.access.IsAdmin(ctx, actor) {
		if err := assignProfiles(ctx, s.repos, p, actor.UserID, now); err != nil {
			return nil, err
		}
		if user, err := s.repos.Users.GetByID(ctx, actor.UserID); err == nil {
			user.AddPatient(p.ID, now)
			if err := s.repos.Users.Save(ctx, user); err != nil {
				return nil, err
			}
		}
	}
	s.created("patient")
	return p, nil
}

// Get returns a profile the caller may access.
func (s *PatientService) Get(ctx context.Context, actor *Actor, id string) (*entities.Patient, error) {
	if err := s.access.Patient(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repos.Patients.GetByID(ctx, id)
}

// List returns the profiles the caller may access.
func (s *PatientService) List(ctx context.Context, actor *Actor) ([]*entities.Patient, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	all, err := s.repos.Patients.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.access.IsAdmin(ctx, actor) {
		return all, nil
	}
	out := make([]*entities.Patient, 0, len(all))
	for _, p := range all {
		if s.access.Patient(ctx, actor, p.ID) == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// Update replaces the editable fields of a profile.
func (s *PatientService) Update(ctx context.Context, actor *Actor, id string, req PatientRequest) (*entities.Patient, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	p.Age = req.Age
	p.Email = req.Email
	p.MedicalInfo = req.MedicalInfo
	p.UpdatedAt = s.now()
	if err := s.repos.Patients.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a profile and takes it off its caregiver's list.
func (s *PatientService) Delete(ctx context.Context, actor *Actor, id string) error {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if p.CaregiverID != "" {
		if err := unassign(ctx, s.repos.Caregivers, p.CaregiverID, p.ID, s.now()); err != nil {
			return err
		}
	}
	return s.repos.Patients.Delete(ctx, id)
}

// CaregiverService manages caregiver profiles and their patient lists.
type CaregiverService struct {
	Base
	repos  *ports.Repositories
	access *AccessPolicy
}

// NewCaregiverService creates the service.
func NewCaregiverService(base Base, repos *ports.Repositories, access *AccessPolicy) *CaregiverService {
	return &CaregiverService{Base: base, repos: repos, access: access}
}

// Create stores a caregiver profile. Caregivers create their own profile
// under their account ID; admins create profiles with new IDs.
func (s *CaregiverService) Create(ctx context.Context, actor *Actor, req CaregiverRequest) (*entities.Caregiver, error) {
	if err := s.access.Caregiver(ctx, actor); err != nil {
		return nil, err
	}
	id := actor.UserID
	if s.access.IsAdmin(ctx, actor) {
		id = newID()
	} else if _, err := s.repos.Caregivers.GetByID(ctx, id); err == nil {
		return nil, pkgerrors.NewConflictError("caregiver profile already exists")
	}

	now := s.now()
	c := &entities.Caregiver{
		ID:             id,
		Name:           req.Name,
		Email:          req.Email,
		Specialization: req.Specialization,
		Patients:       []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repos.Caregivers.Save(ctx, c); err != nil {
		return nil, err
	}
	s.created("caregiver")
	return c, nil
}

// Get returns a caregiver profile. Callers see their own profile; admins see any.
func (s *CaregiverService) Get(ctx context.Context, actor *Actor, id string) (*entities.Caregiver, error) {
	if err := s.self(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repos.Caregivers.GetByID(ctx, id)
}

// List returns every caregiver profile.
func (s *CaregiverService) List(ctx context.Context, actor *Actor) ([]*entities.Caregiver, error) {
	if err := s.access.Caregiver(ctx, actor); err != nil {
		return nil, err
	}
	return s.repos.Caregivers.List(ctx)
}

// Update replaces the editable fields of a profile.
func (s *CaregiverService) Update(ctx context.Context, actor *Actor, id string, req CaregiverRequest) (*entities.Caregiver, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name
	c.Email = req.Email
	c.Specialization = req.Specialization
	c.UpdatedAt = s.now()
	if err := s.repos.Caregivers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a profile and clears it from its patients.
func (s *CaregiverService) Delete(ctx context.Context, actor *Actor, id string) error {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	now := s.now()
	for _, pid := range c.Patients {
		p, err := s.repos.Patients.GetByID(ctx, pid)
		if pkgerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if p.CaregiverID == c.ID {
			p.CaregiverID = ""
			p.UpdatedAt = now
			if err := s.repos.Patients.Save(ctx, p); err != nil {
				return err
			}
		}
	}
	return s.repos.Caregivers.Delete(ctx, id)
}

// AssignPatient links a patient to the caregiver on both documents. A
// patient moves away from any previous caregiver.
func (s *CaregiverService) AssignPatient(ctx context.Context, actor *Actor, caregiverID, patientID string) (*entities.Caregiver, error) {
	if err := s.self(ctx, actor, caregiverID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Caregivers.GetByID(ctx, caregiverID); err != nil {
		return nil, err
	}
	p, err := s.repos.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := assignProfiles(ctx, s.repos, p, caregiverID, s.now()); err != nil {
		return nil, err
	}
	s.log().Info("Patient assigned", zap.String("caregiverID", caregiverID), zap.String("patientID", patientID))
	return s.repos.Caregivers.GetByID(ctx, caregiverID)
}

// Patients returns the profiles assigned to a caregiver.
func (s *CaregiverService) Patients(ctx context.Context, actor *Actor, caregiverID string) ([]*entities.Patient, error) {
	c, err := s.Get(ctx, actor, caregiverID)
	if err != nil {
		return nil, err
	}
	return loadPatients(ctx, s.repos.Patients, c.Patients)
}

func (s *CaregiverService) self(ctx context.Context, actor *Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.UserID == id || s.access.IsAdmin(ctx, actor) {
		return nil
	}
	return pkgerrors.NewForbiddenError("not allowed to access this caregiver")
}

// assignProfiles points the patient at caregiverID and keeps both caregiver
// lists in step. A missing caregiver profile is created on the fly.
func assignProfiles(ctx context.Context, repos *ports.Repositories, p *entities.Patient, caregiverID string, now time.Time) error {
	if p.CaregiverID != "" && p.CaregiverID != caregiverID {
		if err := unassign(ctx, repos.Caregivers, p.CaregiverID, p.ID, now); err != nil {
			return err
		}
	}

	c, err := repos.Caregivers.GetByID(ctx, caregiverID)
	if pkgerrors.IsNotFound(err) {
		c = &entities.Caregiver{ID: caregiverID, Patients: []string{}, CreatedAt: now}
		if user, uerr := repos.Users.GetByID(ctx, caregiverID); uerr == nil {
			c.Name, c.Email = user.Name, user.Email
		}
	} else if err != nil {
		return err
	}
	c.AssignPatient(p.ID, now)
	if err := repos.Caregivers.Save(ctx, c); err != nil {
		return err
	}

	p.CaregiverID = caregiverID
	p.UpdatedAt = now
	return repos.Patients.Save(ctx, p)
}

func unassign(ctx context.Context, repo ports.CaregiverRepository, caregiverID, patientID string, now time.Time) error {
	c, err := repo.GetByID(ctx, caregiverID)
	if pkgerrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	c.UnassignPatient(patientID, now)
	return repo.Save(ctx, c)
}
