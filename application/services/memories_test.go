package services

import (
	"context"
	"errors"
	"testing"

	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	"mindbloom-backend/domain/events"
	"mindbloom-backend/pkg/common"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVisualizer_LocalWhenGeneratorDisabled(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Enabled").Return(false)
	v := NewVisualizer(gen, zap.NewNop())

	vis := v.Visualize(context.Background(), "Grandma's kitchen", "Baking bread on Sundays.", valueobjects.MoodHappy)
	assert.Equal(t, GeneratorLocal, vis.Generator)
	assert.Equal(t, valueobjects.MoodHappy.Palette(), vis.ColorPalette)
	assert.Equal(t, []string{"family", "home", "food"}, vis.SceneElements[:3])
	assert.Contains(t, vis.Description, "family and home and food")
	gen.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestVisualizer_UsesGeneratedScene(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Enabled").Return(true)
	gen.On("GenerateJSON", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			scene := args.Get(2).(*generatedScene)
			scene.VisualDescription = " A sunny kitchen. "
			scene.SceneElements = []string{"oven", "bread"}
		}).Return(nil)
	v := NewVisualizer(gen, zap.NewNop())

	vis := v.Visualize(context.Background(), "Kitchen", "Bread", valueobjects.MoodCalm)
	assert.Equal(t, GeneratorGemini, vis.Generator)
	assert.Equal(t, "A sunny kitchen.", vis.Description)
	assert.Equal(t, valueobjects.MoodCalm.Palette(), vis.ColorPalette)
	assert.Equal(t, []string{"oven", "bread"}, vis.SceneElements)
}

func TestVisualizer_FallsBackOnError(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Enabled").Return(true)
	gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota"))
	v := NewVisualizer(gen, zap.NewNop())

	vis := v.Visualize(context.Background(), "Kitchen", "Bread", valueobjects.MoodNeutral)
	assert.Equal(t, GeneratorLocal, vis.Generator)
}

func newMemoryService(f *fixture) *MemoryService {
	return NewMemoryService(f.base, f.repos.Memories, f.access, NewVisualizer(nil, zap.NewNop()))
}

func TestMemoryService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newMemoryService(f)

	m, err := svc.Create(ctx, patientActor, MemoryRequest{Title: "Lake trip", Content: "We swam in the lake.", Mood: "calm"})
	require.NoError(t, err)

	assert.Equal(t, "pat-1", m.PatientID)
	assert.Equal(t, entities.SourceManual, m.Source)
	assert.Equal(t, "general", m.Category)
	assert.Equal(t, "medium", m.Importance)
	assert.Equal(t, "2024-06-01", m.Date)
	require.NotNil(t, m.Visualization)
	assert.Equal(t, GeneratorLocal, m.Visualization.Generator)
	assert.Equal(t, []string{events.TypeMemoryCreated}, f.published.types())
}

func TestMemoryService_ListFiltersByCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newMemoryService(f)

	for _, req := range []MemoryRequest{
		{Title: "Wedding", Content: "June 1962.", Category: "family"},
		{Title: "First job", Content: "The bakery.", Category: "work"},
		{Title: "Reunion", Content: "Everyone came.", Category: "Family"},
	} {
		_, err := svc.Create(ctx, patientActor, req)
		require.NoError(t, err)
	}

	list, info, err := svc.List(ctx, patientActor, MemoryFilter{Category: "family", ListParams: common.ListParams{Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, 2, info.Total)
	assert.Equal(t, "Reunion", list[0].Title)
	assert.Equal(t, "Wedding", list[1].Title)
}

func TestMemoryService_CaregiverCreatesForPatient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor, caregiverActor, strangerActor)
	svc := newMemoryService(f)

	_, err := svc.Create(ctx, caregiverActor, MemoryRequest{PatientID: "pat-1", Title: "Farm", Content: "Cows."})
	assert.True(t, pkgerrors.IsForbidden(err))

	f.assign(t, caregiverActor, patientActor)
	m, err := svc.Create(ctx, caregiverActor, MemoryRequest{PatientID: "pat-1", Title: "Farm", Content: "Cows."})
	require.NoError(t, err)
	assert.Equal(t, "cg-1", m.UserID)

	own, _, err := svc.List(ctx, patientActor, MemoryFilter{ListParams: common.ListParams{Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	view, _, err := svc.ForPatient(ctx, caregiverActor, MemoryFilter{PatientID: "pat-1", ListParams: common.ListParams{Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, view, 1)

	_, err = svc.Get(ctx, strangerActor, m.ID)
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestMemoryService_UpdatePinVisualizeDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newMemoryService(f)

	m, err := svc.Create(ctx, patientActor, MemoryRequest{Title: "Garden", Content: "Roses.", Mood: "happy"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, patientActor, m.ID, MemoryRequest{Title: "Garden", Content: "Roses.", Mood: "sad"})
	require.NoError(t, err)
	assert.Equal(t, valueobjects.MoodSad.Palette(), updated.Visualization.ColorPalette)

	pinned, err := svc.TogglePin(ctx, patientActor, m.ID)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)

	again, err := svc.Visualize(ctx, patientActor, m.ID)
	require.NoError(t, err)
	assert.True(t, again.IsPinned)
	assert.NotNil(t, again.Visualization)

	require.NoError(t, svc.Delete(ctx, patientActor, m.ID))
	_, err = svc.Get(ctx, patientActor, m.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}
