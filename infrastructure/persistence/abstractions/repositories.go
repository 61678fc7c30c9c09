package abstractions

import (
	"context"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
)

// Stores holds one Store per document kind. Storage backends fill it and
// Repositories adapts it to the application ports.
type Stores struct {
	Users      Store[entities.User]
	Patients   Store[entities.Patient]
	Caregivers Store[entities.Caregiver]
	Journals   Store[entities.JournalEntry]
	Memories   Store[entities.Memory]
	Calendar   Store[entities.CalendarEvent]
	Flows      Store[entities.InterviewFlow]
	Interviews Store[entities.Interview]
	Chats      Store[entities.ChatEntry]
	Analyses   Store[entities.ResponseAnalysis]
	Media      Store[entities.MediaFile]
}

// Repositories adapts stores to the repository ports.
func Repositories(s Stores) *ports.Repositories {
	return &ports.Repositories{
		Users:      userRepository{s.Users},
		Patients:   profileRepository[entities.Patient]{s.Patients},
		Caregivers: profileRepository[entities.Caregiver]{s.Caregivers},
		Journals:   ownedRepository[entities.JournalEntry]{s.Journals},
		Memories:   memoryRepository{ownedRepository[entities.Memory]{s.Memories}},
		Calendar:   ownedRepository[entities.CalendarEvent]{s.Calendar},
		Interviews: interviewRepository{flows: s.Flows, interviews: s.Interviews},
		Chats:      chatRepository{s.Chats},
		Analyses:   analysisRepository{s.Analyses},
		Media:      mediaRepository{s.Media},
	}
}

type userRepository struct {
	store Store[entities.User]
}

func (r userRepository) Create(ctx context.Context, u *entities.User) error { return r.store.Create(ctx, u) }
func (r userRepository) Save(ctx context.Context, u *entities.User) error { return r.store.Save(ctx, u) }
func (r userRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return r.store.Get(ctx, id)
}
func (r userRepository) List(ctx context.Context) ([]*entities.User, error) { return r.store.List(ctx) }

// profileRepository serves patients and caregivers.
type profileRepository[E any] struct {
	store Store[E]
}

func (r profileRepository[E]) Save(ctx context.Context, doc *E) error { return r.store.Save(ctx, doc) }
func (r profileRepository[E]) GetByID(ctx context.Context, id string) (*E, error) {
	return r.store.Get(ctx, id)
}
func (r profileRepository[E]) List(ctx context.Context) ([]*E, error) { return r.store.List(ctx) }
func (r profileRepository[E]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

// ownedRepository serves kinds listed per owner with uniqueness on create.
type ownedRepository[E any] struct {
	store Store[E]
}

func (r ownedRepository[E]) Create(ctx context.Context, doc *E) error { return r.store.Create(ctx, doc) }
func (r ownedRepository[E]) Save(ctx context.Context, doc *E) error { return r.store.Save(ctx, doc) }
func (r ownedRepository[E]) GetByID(ctx context.Context, id string) (*E, error) {
	return r.store.Get(ctx, id)
}
func (r ownedRepository[E]) ListByUser(ctx context.Context, userID string) ([]*E, error) {
	return r.store.ListByOwner(ctx, userID)
}
func (r ownedRepository[E]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

type memoryRepository struct {
	ownedRepository[entities.Memory]
}

func (r memoryRepository) ListByPatient(ctx context.Context, patientID string) ([]*entities.Memory, error) {
	return r.store.ListByOwner(ctx, patientID)
}

type interviewRepository struct {
	flows      Store[entities.InterviewFlow]
	interviews Store[entities.Interview]
}

func (r interviewRepository) SaveFlow(ctx context.Context, f *entities.InterviewFlow) error {
	return r.flows.Save(ctx, f)
}
func (r interviewRepository) ListFlows(ctx context.Context, createdBy string) ([]*entities.InterviewFlow, error) {
	return r.flows.ListByOwner(ctx, createdBy)
}
func (r interviewRepository) SaveInterview(ctx context.Context, i *entities.Interview) error {
	return r.interviews.Save(ctx, i)
}
func (r interviewRepository) GetInterview(ctx context.Context, id string) (*entities.Interview, error) {
	return r.interviews.Get(ctx, id)
}
func (r interviewRepository) ListInterviews(ctx context.Context, createdBy string) ([]*entities.Interview, error) {
	return r.interviews.ListByOwner(ctx, createdBy)
}

type chatRepository struct {
	store Store[entities.ChatEntry]
}

func (r chatRepository) Save(ctx context.Context, c *entities.ChatEntry) error {
	return r.store.Save(ctx, c)
}
func (r chatRepository) ListByUser(ctx context.Context, userID string) ([]*entities.ChatEntry, error) {
	return r.store.ListByOwner(ctx, userID)
}

type analysisRepository struct {
	store Store[entities.ResponseAnalysis]
}

func (r analysisRepository) Save(ctx context.Context, a *entities.ResponseAnalysis) error {
	return r.store.Save(ctx, a)
}
func (r analysisRepository) ListByPatient(ctx context.Context, patientID string) ([]*entities.ResponseAnalysis, error) {
	return r.store.ListByOwner(ctx, patientID)
}

type mediaRepository struct {
	store Store[entities.MediaFile]
}

func (r mediaRepository) Save(ctx context.Context, m *entities.MediaFile) error {
	return r.store.Save(ctx, m)
}
func (r mediaRepository) GetByID(ctx context.Context, id string) (*entities.MediaFile, error) {
	return r.store.Get(ctx, id)
}
func (r mediaRepository) ListByUser(ctx context.Context, userID string) ([]*entities.MediaFile, error) {
	return r.store.ListByOwner(ctx, userID)
}
func (r mediaRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}
