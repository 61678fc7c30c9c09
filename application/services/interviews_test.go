package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	"mindbloom-backend/domain/events"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryFromResults(t *testing.T) {
	now := time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC)
	results := &ports.InterviewResults{
		InterviewID: "iv-1",
		Responses: []ports.QuestionAnswer{
			{Question: "Can you tell me about a happy memory from your childhood?", Answer: "We had a beautiful garden."},
			{Question: "What's your favorite family tradition?", Answer: "Sunday dinners."},
		},
	}

	m, err := MemoryFromResults(results, "p1", "u1", now)
	require.NoError(t, err)

	assert.Equal(t, "Voice Memory - Can you tell me about a happy ...", m.Title)
	assert.Equal(t, "Question: Can you tell me about a happy memory from your childhood?\nAnswer: We had a beautiful garden.\n\n"+
		"Question: What's your favorite family tradition?\nAnswer: Sunday dinners.", m.Content)
	assert.Equal(t, valueobjects.MoodHappy, m.Mood)
	assert.Equal(t, entities.SourceRibbonInterview, m.Source)
	assert.Equal(t, "p1", m.PatientID)
	assert.Equal(t, "2024-06-02", m.Date)
	assert.NotEmpty(t, m.ID)
}

func TestMemoryFromResults_NeutralAndEmpty(t *testing.T) {
	m, err := MemoryFromResults(&ports.InterviewResults{Responses: []ports.QuestionAnswer{
		{Question: "Where?", Answer: "Ohio"},
	}}, "p1", "u1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, valueobjects.MoodNeutral, m.Mood)
	assert.Equal(t, "Voice Memory - Where?...", m.Title)

	_, err = MemoryFromResults(&ports.InterviewResults{}, "p1", "u1", time.Now())
	assert.True(t, pkgerrors.IsValidation(err))
}

func newInterviewService(f *fixture, voice ports.VoiceInterviewer) *InterviewService {
	memories := NewMemoryService(f.base, f.repos.Memories, f.access, NewVisualizer(nil, zap.NewNop()))
	return NewInterviewService(f.base, f.repos, f.access, voice, memories)
}

func TestInterviewService_Unavailable(t *testing.T) {
	f := newFixture(t)
	voice := &mockVoice{}
	voice.On("Enabled").Return(false)
	svc := newInterviewService(f, voice)

	_, err := svc.CreateFlow(context.Background(), patientActor, FlowRequest{FlowName: "x", PatientID: "pat-1"})
	assert.True(t, pkgerrors.IsUnavailable(err))
}

func TestInterviewService_FlowToMemory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor)

	voice := &mockVoice{}
	voice.On("Enabled").Return(true)
	voice.On("CreateFlow", mock.Anything, mock.MatchedBy(func(req ports.FlowRequest) bool {
		return req.Name == "Family" && len(req.Questions) == len(DefaultQuestions) && req.Metadata["patient_id"] == "pat-1"
	})).Return(&ports.RemoteFlow{ID: "rb-flow"}, nil)
	voice.On("CreateInterview", mock.Anything, "rb-flow", mock.Anything).
		Return(&ports.RemoteInterview{ID: "rb-iv", URL: "https://ribbon.test/i/rb-iv"}, nil)
	voice.On("GetInterview", mock.Anything, "rb-iv").Return(&ports.RemoteInterview{ID: "rb-iv", Status: "in_progress"}, nil)
	voice.On("GetResults", mock.Anything, "rb-iv").Return(&ports.InterviewResults{
		InterviewID: "rb-iv",
		Responses:   []ports.QuestionAnswer{{Question: "Where did you grow up?", Answer: "A wonderful farm in Ohio."}},
	}, nil)
	svc := newInterviewService(f, voice)

	flow, err := svc.CreateFlow(ctx, patientActor, FlowRequest{FlowName: "Family", PatientID: "pat-1"})
	require.NoError(t, err)
	assert.Equal(t, "rb-flow", flow.RibbonFlowID)

	flows, err := svc.Flows(ctx, patientActor)
	require.NoError(t, err)
	assert.Len(t, flows, 1)

	iv, err := svc.CreateInterview(ctx, patientActor, InterviewRequest{FlowID: "rb-flow", PatientName: "Rose"})
	require.NoError(t, err)
	assert.Equal(t, entities.InterviewCreated, iv.Status)
	assert.Equal(t, flow.ID, iv.FlowID)
	assert.Equal(t, "pat-1", iv.PatientID)

	refreshed, err := svc.Status(ctx, patientActor, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.InterviewInProgress, refreshed.Status)

	_, err = svc.Status(ctx, strangerActor, iv.ID)
	assert.True(t, pkgerrors.IsForbidden(err))

	result, err := svc.CompleteWithResults(ctx, patientActor, iv.ID, ResultsRequest{})
	require.NoError(t, err)
	assert.Equal(t, entities.InterviewCompleted, result.Interview.Status)
	assert.Equal(t, result.Memory.ID, result.Interview.MemoryID)
	assert.Equal(t, valueobjects.MoodHappy, result.Memory.Mood)

	stored, err := f.repos.Memories.GetByID(ctx, result.Memory.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SourceRibbonInterview, stored.Source)

	_, err = svc.CompleteWithResults(ctx, patientActor, iv.ID, ResultsRequest{})
	assert.True(t, pkgerrors.IsConflict(err))

	assert.Equal(t, []string{events.TypeMemoryCreated, events.TypeInterviewCompleted}, f.published.types())

	list, err := svc.Interviews(ctx, patientActor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.InterviewCompleted, list[0].Status)
}

func TestInterviewService_MemoryInterview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor)

	voice := &mockVoice{}
	voice.On("Enabled").Return(true)
	voice.On("CreateFlow", mock.Anything, mock.MatchedBy(func(req ports.FlowRequest) bool {
		return req.Name == "Memory Interview - Rose" && req.Questions[0] == CompassionateQuestions[0]
	})).Return(&ports.RemoteFlow{ID: "rb-flow"}, nil)
	voice.On("CreateInterview", mock.Anything, "rb-flow", map[string]string{"patient_name": "Rose", "patient_id": "pat-1"}).
		Return(&ports.RemoteInterview{ID: "rb-iv", URL: "https://ribbon.test/i/rb-iv", Status: "created"}, nil)
	svc := newInterviewService(f, voice)

	mi, err := svc.MemoryInterview(ctx, patientActor, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, "Rose", mi.PatientName)
	assert.Equal(t, "https://ribbon.test/i/rb-iv", mi.Interview.InterviewURL)
	voice.AssertExpectations(t)

	_, err = svc.MemoryInterview(ctx, patientActor, "someone-else")
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = svc.MemoryInterview(ctx, adminActor, "ghost")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestInterviewService_UnknownFlow(t *testing.T) {
	f := newFixture(t)
	voice := &mockVoice{}
	voice.On("Enabled").Return(true)
	svc := newInterviewService(f, voice)

	_, err := svc.CreateInterview(context.Background(), patientActor, InterviewRequest{FlowID: "nope", PatientName: "Rose"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

// flakyInterviews fails the first save of a completed interview.
type flakyInterviews struct {
	ports.InterviewRepository
	failed bool
}

func (r *flakyInterviews) SaveInterview(ctx context.Context, iv *entities.Interview) error {
	if iv.Status == entities.InterviewCompleted && !r.failed {
		r.failed = true
		return pkgerrors.NewDatabaseError("save interview", errors.New("throttled"))
	}
	return r.InterviewRepository.SaveInterview(ctx, iv)
}

func TestInterviewService_CompleteRetriesAfterSaveFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, patientActor)
	f.repos.Interviews = &flakyInterviews{InterviewRepository: f.repos.Interviews}

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, f.repos.Interviews.SaveInterview(ctx, &entities.Interview{
		ID:                "iv-1",
		RibbonInterviewID: "rb-iv",
		PatientID:         "pat-1",
		Status:            entities.InterviewInProgress,
		CreatedBy:         "pat-1",
		CreatedAt:         now,
		UpdatedAt:         now,
	}))

	voice := &mockVoice{}
	voice.On("Enabled").Return(true)
	voice.On("GetResults", mock.Anything, "rb-iv").Return(&ports.InterviewResults{
		InterviewID: "rb-iv",
		Responses:   []ports.QuestionAnswer{{Question: "Where did you grow up?", Answer: "A wonderful farm in Ohio."}},
	}, nil)
	svc := newInterviewService(f, voice)

	_, err := svc.CompleteWithResults(ctx, patientActor, "iv-1", ResultsRequest{})
	require.Error(t, err)

	memories, err := f.repos.Memories.ListByPatient(ctx, "pat-1")
	require.NoError(t, err)
	assert.Empty(t, memories)
	assert.Empty(t, f.published.types())

	result, err := svc.CompleteWithResults(ctx, patientActor, "iv-1", ResultsRequest{})
	require.NoError(t, err)
	assert.Equal(t, entities.InterviewCompleted, result.Interview.Status)
	require.NotNil(t, result.Memory.Visualization)
	assert.Equal(t, GeneratorLocal, result.Memory.Visualization.Generator)

	memories, err = f.repos.Memories.ListByPatient(ctx, "pat-1")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, result.Memory.ID, memories[0].ID)

	stored, err := f.repos.Interviews.GetInterview(ctx, "iv-1")
	require.NoError(t, err)
	assert.Equal(t, result.Memory.ID, stored.MemoryID)
	assert.Equal(t, []string{events.TypeMemoryCreated, events.TypeInterviewCompleted}, f.published.types())
}
