package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/events"
	"mindbloom-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	patientActor   = &Actor{UserID: "pat-1", Email: "rose@example.com", Name: "Rose", Roles: []string{"patient"}}
	caregiverActor = &Actor{UserID: "cg-1", Email: "carol@example.com", Name: "Carol", Roles: []string{"caregiver"}}
	strangerActor  = &Actor{UserID: "u-9", Email: "sam@example.com", Name: "Sam", Roles: []string{"user"}}
	adminActor     = &Actor{UserID: "adm-1", Email: "admin@example.com", Name: "Admin", Roles: []string{"admin"}}
)

// stepClock advances one minute per reading so list order is predictable.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock(start time.Time) *stepClock { return &stepClock{t: start} }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.GetEventType())
	}
	return out
}

type fixture struct {
	repos     *ports.Repositories
	access    *AccessPolicy
	base      Base
	clock     *stepClock
	published *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repos:     memory.NewRepositories(),
		clock:     newStepClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
		published: &recordingPublisher{},
	}
	f.access = NewAccessPolicy(f.repos.Users, f.repos.Caregivers)
	f.base = Base{Clock: f.clock.Now, Publisher: f.published, Logger: zap.NewNop()}
	return f
}

// register creates accounts for actors with their role.
func (f *fixture) register(t *testing.T, actors ...*Actor) {
	t.Helper()
	users := NewUserService(f.base, f.repos, f.access)
	for _, a := range actors {
		role := entities.Role(a.Roles[0])
		if role == entities.RoleAdmin {
			role = entities.RoleUser
		}
		_, _, err := users.Register(context.Background(), a, RegisterRequest{Role: role})
		require.NoError(t, err)
	}
}

// assign puts patient under caregiver.
func (f *fixture) assign(t *testing.T, caregiver, patient *Actor) {
	t.Helper()
	users := NewUserService(f.base, f.repos, f.access)
	_, err := users.AssignCaregiver(context.Background(), caregiver, patient.UserID)
	require.NoError(t, err)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) GenerateJSON(ctx context.Context, prompt string, out any) error {
	return m.Called(ctx, prompt, out).Error(0)
}

func (m *mockGenerator) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	args := m.Called(ctx, audio, mimeType)
	return args.String(0), args.Error(1)
}

type mockVoice struct {
	mock.Mock
}

func (m *mockVoice) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *mockVoice) CreateFlow(ctx context.Context, req ports.FlowRequest) (*ports.RemoteFlow, error) {
	args := m.Called(ctx, req)
	flow, _ := args.Get(0).(*ports.RemoteFlow)
	return flow, args.Error(1)
}

func (m *mockVoice) CreateInterview(ctx context.Context, flowID string, metadata map[string]string) (*ports.RemoteInterview, error) {
	args := m.Called(ctx, flowID, metadata)
	iv, _ := args.Get(0).(*ports.RemoteInterview)
	return iv, args.Error(1)
}

func (m *mockVoice) GetInterview(ctx context.Context, id string) (*ports.RemoteInterview, error) {
	args := m.Called(ctx, id)
	iv, _ := args.Get(0).(*ports.RemoteInterview)
	return iv, args.Error(1)
}

func (m *mockVoice) GetResults(ctx context.Context, id string) (*ports.InterviewResults, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*ports.InterviewResults)
	return res, args.Error(1)
}
