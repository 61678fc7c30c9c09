package services

import (
	"context"
	"testing"

	"mindbloom-backend/domain/core/entities"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewUserService(f.base, f.repos, f.access)

	user, created, err := svc.Register(ctx, patientActor, RegisterRequest{Role: entities.RolePatient})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Rose", user.Name)
	assert.Equal(t, entities.RolePatient, user.Role)

	again, created, err := svc.Register(ctx, patientActor, RegisterRequest{Name: "Other", Role: entities.RoleCaregiver})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, entities.RolePatient, again.Role)

	profile, err := f.repos.Patients.GetByID(ctx, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, "Rose", profile.Name)
}

func TestUserService_RegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewUserService(f.base, f.repos, f.access)

	_, _, err := svc.Register(ctx, patientActor, RegisterRequest{})
	require.NoError(t, err)

	twin := &Actor{UserID: "pat-2", Email: "ROSE@example.com"}
	_, _, err = svc.Register(ctx, twin, RegisterRequest{})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor)
	svc := NewUserService(f.base, f.repos, f.access)

	name := "Rose Miller"
	_, err := svc.UpdateProfile(ctx, patientActor, ProfileUpdate{Name: &name, Profile: map[string]string{"city": "Dayton", "phone": "555"}})
	require.NoError(t, err)

	user, err := svc.UpdateProfile(ctx, patientActor, ProfileUpdate{Profile: map[string]string{"phone": ""}})
	require.NoError(t, err)
	assert.Equal(t, "Rose Miller", user.Name)
	assert.Equal(t, map[string]string{"city": "Dayton"}, user.Profile)
}

func TestUserService_ListRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor, caregiverActor)
	svc := NewUserService(f.base, f.repos, f.access)

	_, err := svc.List(ctx, caregiverActor)
	assert.True(t, pkgerrors.IsForbidden(err))

	users, err := svc.List(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserService_AssignCaregiver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor, caregiverActor, strangerActor)
	svc := NewUserService(f.base, f.repos, f.access)

	_, err := svc.AssignCaregiver(ctx, strangerActor, "pat-1")
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = svc.AssignCaregiver(ctx, caregiverActor, "nobody")
	assert.True(t, pkgerrors.IsNotFound(err))

	caregiver, err := svc.AssignCaregiver(ctx, caregiverActor, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pat-1"}, caregiver.Patients)

	patientUser, err := f.repos.Users.GetByID(ctx, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, "cg-1", patientUser.CaregiverID)

	profile, err := f.repos.Caregivers.GetByID(ctx, "cg-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pat-1"}, profile.Patients)

	patients, err := svc.CaregiverPatients(ctx, caregiverActor)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "cg-1", patients[0].CaregiverID)
}
