// Package services implements the use cases behind the REST API. Every
// method takes the authenticated caller and enforces access itself, so the
// HTTP layer only decodes requests and encodes results.
package services

import (
	"context"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/events"
	"mindbloom-backend/pkg/auth"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/observability"
	"mindbloom-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is the authenticated caller a service acts for.
type Actor = auth.UserContext

// Base carries the collaborators shared by every service.
type Base struct {
	Clock     utils.Clock
	Publisher ports.EventPublisher
	Created   func(kind string)
	Logger    *zap.Logger
}

func (b Base) now() time.Time {
	if b.Clock == nil {
		return utils.SystemClock()
	}
	return b.Clock().UTC()
}

func (b Base) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// publish delivers events. Failures are logged and never fail the caller.
func (b Base) publish(ctx context.Context, evts ...events.DomainEvent) {
	if b.Publisher == nil || len(evts) == 0 {
		return
	}
	if err := b.Publisher.Publish(ctx, evts...); err != nil {
		b.log().Warn("Failed to publish domain events",
			zap.Int("count", len(evts)),
			zap.String("eventType", evts[0].GetEventType()),
			zap.Error(err))
	}
}

func (b Base) created(kind string) {
	if b.Created != nil {
		b.Created(kind)
	}
}

func newID() string {
	return uuid.NewString()
}

func requireActor(actor *Actor) error {
	if actor == nil || actor.UserID == "" {
		return pkgerrors.NewUnauthorizedError("authentication required")
	}
	return nil
}

// ownerOrAccess allows the owner of a document and anyone who may act for
// that owner as a patient.
func ownerOrAccess(ctx context.Context, access *AccessPolicy, actor *Actor, ownerID string) error {
	if actor.UserID == ownerID {
		return nil
	}
	return access.Patient(ctx, actor, ownerID)
}

// Services bundles every use case the API exposes.
type Services struct {
	Users      *UserService
	Patients   *PatientService
	Caregivers *CaregiverService
	Journals   *JournalService
	Memories   *MemoryService
	Calendar   *CalendarService
	Chat       *ChatService
	Interviews *InterviewService
	Analysis   *AnalysisService
	Media      *MediaService
}

// Settings are the tunables of the services.
type Settings struct {
	RelevanceStrategy string
	MaxUploadBytes    int64
}

// NewServices wires every service over repos. gen and voice may be nil when
// the integrations are not configured.
func NewServices(base Base, repos *ports.Repositories, gen ports.TextGenerator, voice ports.VoiceInterviewer,
	files ports.FileStore, settings Settings, metrics *observability.Metrics, collector *observability.Collector) *Services {
	access := NewAccessPolicy(repos.Users, repos.Caregivers)
	memories := NewMemoryService(base, repos.Memories, access, NewVisualizer(gen, base.log()))
	return &Services{
		Users:      NewUserService(base, repos, access),
		Patients:   NewPatientService(base, repos, access),
		Caregivers: NewCaregiverService(base, repos, access),
		Journals:   NewJournalService(base, repos.Journals, access),
		Memories:   memories,
		Calendar:   NewCalendarService(base, repos.Calendar, access),
		Chat:       NewChatService(base, repos.Chats),
		Interviews: NewInterviewService(base, repos, access, voice, memories),
		Analysis:   NewAnalysisService(base, repos, access, gen, settings.RelevanceStrategy, metrics, collector),
		Media:      NewMediaService(base, repos.Media, files, settings.MaxUploadBytes),
	}
}
