package services

import (
	"context"
	"testing"

	"mindbloom-backend/application/analysis"
	"mindbloom-backend/domain/core/valueobjects"
	"mindbloom-backend/domain/events"
	"mindbloom-backend/pkg/common"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalService_CreateComputesInsights(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewJournalService(f.base, f.repos.Journals, f.access)

	entry, err := svc.Create(ctx, patientActor, JournalRequest{
		Title:   "Sunday",
		Content: "I loved baking bread with my grandmother in her kitchen.",
		Mood:    "Happy",
	})
	require.NoError(t, err)

	assert.Equal(t, valueobjects.MoodHappy, entry.Mood)
	require.NotNil(t, entry.Insights)
	assert.Equal(t, valueobjects.MoodHappy, entry.Insights.Sentiment)
	assert.Equal(t, []string{"family", "happiness", "home", "food"}, entry.Insights.KeyThemes)
	assert.Equal(t, []string{analysis.Themes[0].FollowUp, analysis.Themes[2].FollowUp, analysis.Themes[3].FollowUp},
		entry.Insights.SuggestedPrompts)
	assert.Equal(t, []string{}, entry.Tags)
	assert.Equal(t, []string{events.TypeJournalCreated}, f.published.types())
}

func TestJournalService_DuplicateTitleSameDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewJournalService(f.base, f.repos.Journals, f.access)

	_, err := svc.Create(ctx, patientActor, JournalRequest{Title: "Morning walk", Content: "Sunny."})
	require.NoError(t, err)
	_, err = svc.Create(ctx, patientActor, JournalRequest{Title: "morning walk ", Content: "Again."})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestJournalService_ListPinnedAndPaged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewJournalService(f.base, f.repos.Journals, f.access)

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		e, err := svc.Create(ctx, patientActor, JournalRequest{Title: title, Content: title})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	_, err := svc.TogglePin(ctx, patientActor, ids[0])
	require.NoError(t, err)

	page, info, err := svc.List(ctx, patientActor, JournalFilter{ListParams: common.ListParams{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Title)
	assert.Equal(t, 3, info.Total)
	assert.True(t, info.HasNext)

	pinned, _, err := svc.List(ctx, patientActor, JournalFilter{PinnedOnly: true, ListParams: common.ListParams{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, pinned, 1)
	assert.Equal(t, "one", pinned[0].Title)
}

func TestJournalService_UpdateRecomputesInsightsOnContentChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewJournalService(f.base, f.repos.Journals, f.access)

	e, err := svc.Create(ctx, patientActor, JournalRequest{Title: "Garden", Content: "The garden was quiet."})
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, e.Insights.KeyThemes)

	updated, err := svc.Update(ctx, patientActor, e.ID, JournalRequest{Title: "Garden", Content: "We made soup for dinner."})
	require.NoError(t, err)
	assert.Equal(t, []string{"food"}, updated.Insights.KeyThemes)
}

func TestJournalService_AccessRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor, caregiverActor, strangerActor)
	svc := NewJournalService(f.base, f.repos.Journals, f.access)

	e, err := svc.Create(ctx, patientActor, JournalRequest{Title: "Private", Content: "Just for me."})
	require.NoError(t, err)

	_, err = svc.Get(ctx, strangerActor, e.ID)
	assert.True(t, pkgerrors.IsForbidden(err))
	assert.True(t, pkgerrors.IsForbidden(svc.Delete(ctx, strangerActor, e.ID)))

	_, _, err = svc.ForPatient(ctx, caregiverActor, "pat-1", JournalFilter{ListParams: common.ListParams{Limit: 10}})
	assert.True(t, pkgerrors.IsForbidden(err))

	f.assign(t, caregiverActor, patientActor)
	entries, _, err := svc.ForPatient(ctx, caregiverActor, "pat-1", JournalFilter{ListParams: common.ListParams{Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, svc.Delete(ctx, patientActor, e.ID))
	_, err = svc.Get(ctx, patientActor, e.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}
