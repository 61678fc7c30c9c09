package cli

import (
	"context"
	"testing"
	"time"

	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	"mindbloom-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestParseSeed_Default(t *testing.T) {
	data, err := ParseSeed(defaultSeed)
	require.NoError(t, err)

	assert.Len(t, data.Caregivers, 1)
	assert.Len(t, data.Patients, 1)
	assert.Len(t, data.Memories, 3)
	assert.Len(t, data.Events, 3)
	assert.Equal(t, "caregiver-demo", data.Patients[0].CaregiverID)
}

func TestParseSeed_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "patients: [name: {"},
		{"patient without name", "patients:\n  - id: p1\n"},
		{"memory without patient", "memories:\n  - title: Lake\n"},
		{"event without owner", "events:\n  - title: Pills\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestSeed_Default(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	data, err := ParseSeed(defaultSeed)
	require.NoError(t, err)

	report, err := Seed(ctx, repos, data, seedNow)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 1, report.Caregivers)
	assert.Equal(t, 1, report.Patients)
	assert.Equal(t, 3, report.Memories)
	assert.Equal(t, 3, report.Events)

	caregiver, err := repos.Caregivers.GetByID(ctx, "caregiver-demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"patient-demo"}, caregiver.Patients)

	memories, err := repos.Memories.ListByPatient(ctx, "patient-demo")
	require.NoError(t, err)
	require.Len(t, memories, 3)
	for _, m := range memories {
		assert.Equal(t, "caregiver-demo", m.UserID)
		assert.Equal(t, entities.SourceManual, m.Source)
		assert.NotEmpty(t, m.Category)
		assert.NotNil(t, m.Tags)
	}

	events, err := repos.Calendar.ListByUser(ctx, "patient-demo")
	require.NoError(t, err)
	dates := map[string]string{}
	for _, e := range events {
		dates[e.Title] = e.Date
		assert.Equal(t, entities.StatusPending, e.Status)
	}
	assert.Equal(t, "2025-03-10", dates["Morning medication"])
	assert.Equal(t, "2025-03-13", dates["Neurologist appointment"])
}

func TestSeed_SkipsWhenPatientsExist(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	require.NoError(t, repos.Patients.Save(ctx, &entities.Patient{ID: "p-1", Name: "Existing", CreatedAt: seedNow, UpdatedAt: seedNow}))

	data, err := ParseSeed(defaultSeed)
	require.NoError(t, err)

	report, err := Seed(ctx, repos, data, seedNow)
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	_, err = repos.Caregivers.GetByID(ctx, "caregiver-demo")
	assert.Error(t, err)
}

func TestSeed_Defaults(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	data := &SeedData{
		Patients: []SeedPatient{{ID: "p-1", Name: "Edith"}},
		Memories: []SeedMemory{{PatientID: "p-1", Title: "Garden", Content: "Roses", Mood: "unknown"}},
		Events:   []SeedEvent{{UserID: "p-1", Title: "Tea", Date: "2025-04-01"}},
	}

	report, err := Seed(ctx, repos, data, seedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Memories)

	memories, err := repos.Memories.ListByPatient(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "p-1", memories[0].UserID)
	assert.Equal(t, valueobjects.MoodNeutral, memories[0].Mood)
	assert.Equal(t, "general", memories[0].Category)
	assert.Equal(t, "medium", memories[0].Importance)

	events, err := repos.Calendar.ListByUser(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entities.EventReminder, events[0].EventType)
	assert.Equal(t, entities.PriorityMedium, events[0].Priority)
	assert.Equal(t, "2025-04-01", events[0].Date)
}

func TestSeed_UnknownCaregiver(t *testing.T) {
	repos := memory.NewRepositories()
	data := &SeedData{Patients: []SeedPatient{{ID: "p-1", Name: "Edith", CaregiverID: "missing"}}}

	_, err := Seed(context.Background(), repos, data, seedNow)
	assert.Error(t, err)
}
