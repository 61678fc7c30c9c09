package services

import (
	"context"
	"testing"

	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientService_CaregiverCreatesAndOwns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, caregiverActor, strangerActor)
	svc := NewPatientService(f.base, f.repos, f.access)

	p, err := svc.Create(ctx, caregiverActor, PatientRequest{Name: "Walter", Age: 82})
	require.NoError(t, err)
	assert.Equal(t, "cg-1", p.CaregiverID)

	got, err := svc.Get(ctx, caregiverActor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walter", got.Name)

	_, err = svc.Get(ctx, strangerActor, p.ID)
	assert.True(t, pkgerrors.IsForbidden(err))

	visible, err := svc.List(ctx, strangerActor)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.List(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	updated, err := svc.Update(ctx, caregiverActor, p.ID, PatientRequest{Name: "Walt", Age: 83})
	require.NoError(t, err)
	assert.Equal(t, "Walt", updated.Name)
	assert.Equal(t, "cg-1", updated.CaregiverID)

	require.NoError(t, svc.Delete(ctx, caregiverActor, p.ID))
	cg, err := f.repos.Caregivers.GetByID(ctx, "cg-1")
	require.NoError(t, err)
	assert.Empty(t, cg.Patients)
}

func TestCaregiverService_AssignPatientMovesBetweenCaregivers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor, caregiverActor)
	svc := NewCaregiverService(f.base, f.repos, f.access)

	other, err := svc.Create(ctx, adminActor, CaregiverRequest{Name: "Night nurse"})
	require.NoError(t, err)

	_, err = svc.AssignPatient(ctx, caregiverActor, "cg-1", "pat-1")
	require.NoError(t, err)

	moved, err := svc.AssignPatient(ctx, adminActor, other.ID, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pat-1"}, moved.Patients)

	first, err := svc.Get(ctx, caregiverActor, "cg-1")
	require.NoError(t, err)
	assert.Empty(t, first.Patients)

	patients, err := svc.Patients(ctx, adminActor, other.ID)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, other.ID, patients[0].CaregiverID)
}

func TestCaregiverService_ProfileRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor, caregiverActor)
	svc := NewCaregiverService(f.base, f.repos, f.access)

	_, err := svc.Create(ctx, patientActor, CaregiverRequest{Name: "Rose"})
	assert.True(t, pkgerrors.IsForbidden(err))

	// Registration already created Carol's profile.
	_, err = svc.Create(ctx, caregiverActor, CaregiverRequest{Name: "Carol"})
	assert.True(t, pkgerrors.IsConflict(err))

	_, err = svc.Get(ctx, patientActor, "cg-1")
	assert.True(t, pkgerrors.IsForbidden(err))

	updated, err := svc.Update(ctx, caregiverActor, "cg-1", CaregiverRequest{Name: "Carol", Specialization: "memory care"})
	require.NoError(t, err)
	assert.Equal(t, "memory care", updated.Specialization)

	_, err = svc.AssignPatient(ctx, caregiverActor, "cg-1", "pat-1")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, caregiverActor, "cg-1"))

	p, err := f.repos.Patients.GetByID(ctx, "pat-1")
	require.NoError(t, err)
	assert.Empty(t, p.CaregiverID)
}
