package services

import (
	"context"
	"fmt"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/events"
	pkgerrors "mindbloom-backend/pkg/errors"

	"go.uber.org/zap"
)

// FlowRequest creates an interview flow for a patient.
type FlowRequest struct {
	FlowName  string   `json:"flow_name" validate:"required,max=200"`
	Questions []string `json:"questions" validate:"max=30,dive,required,max=500"`
	PatientID string   `json:"patient_id" validate:"required"`
}

// InterviewRequest starts an interview against a stored flow.
type InterviewRequest struct {
	FlowID      string `json:"flow_id" validate:"required"`
	PatientName string `json:"patient_name" validate:"required,max=200"`
}

// ResultsRequest names the patient the interview memory belongs to.
type ResultsRequest struct {
	PatientID string `json:"patient_id"`
}

// InterviewResult is a completed interview with the memory it produced.
type InterviewResult struct {
	Interview *entities.Interview     `json:"interview"`
	Memory    *entities.Memory        `json:"memory"`
	Results   *ports.InterviewResults `json:"interview_results"`
}

// MemoryInterview is a guided interview prepared for a patient.
type MemoryInterview struct {
	Flow        *entities.InterviewFlow `json:"flow"`
	Interview   *entities.Interview     `json:"interview"`
	PatientName string                  `json:"patient_name"`
}

// InterviewService runs voice interviews and turns their answers into memories.
type InterviewService struct {
	Base
	repos    *ports.Repositories
	access   *AccessPolicy
	voice    ports.VoiceInterviewer
	memories *MemoryService
}

// NewInterviewService creates the service.
func NewInterviewService(base Base, repos *ports.Repositories, access *AccessPolicy, voice ports.VoiceInterviewer, memories *MemoryService) *InterviewService {
	return &InterviewService{Base: base, repos: repos, access: access, voice: voice, memories: memories}
}

func (s *InterviewService) ready() error {
	if s.voice == nil || !s.voice.Enabled() {
		return pkgerrors.NewUnavailableError("voice interviews")
	}
	return nil
}

// CreateFlow registers a flow with the voice provider and stores it.
func (s *InterviewService) CreateFlow(ctx context.Context, actor *Actor, req FlowRequest) (*entities.InterviewFlow, error) {
	if err := s.access.Patient(ctx, actor, req.PatientID); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	questions := req.Questions
	if len(questions) == 0 {
		questions = DefaultQuestions
	}
	return s.createFlow(ctx, actor, req.FlowName, req.PatientID, questions)
}

func (s *InterviewService) createFlow(ctx context.Context, actor *Actor, name, patientID string, questions []string) (*entities.InterviewFlow, error) {
	remote, err := s.voice.CreateFlow(ctx, ports.FlowRequest{
		Name:      name,
		Questions: questions,
		Metadata:  map[string]string{"patient_id": patientID, "created_by": actor.UserID},
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	flow := &entities.InterviewFlow{
		ID:           newID(),
		RibbonFlowID: remote.ID,
		Name:         name,
		PatientID:    patientID,
		Questions:    append([]string{}, questions...),
		CreatedBy:    actor.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Interviews.SaveFlow(ctx, flow); err != nil {
		return nil, err
	}
	s.created("interview_flow")
	return flow, nil
}

// Flows returns the flows the caller created, newest first.
func (s *InterviewService) Flows(ctx context.Context, actor *Actor) ([]*entities.InterviewFlow, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repos.Interviews.ListFlows(ctx, actor.UserID)
}

// CreateInterview starts an interview. FlowID may be a stored flow ID or
// the provider's flow ID.
func (s *InterviewService) CreateInterview(ctx context.Context, actor *Actor, req InterviewRequest) (*entities.Interview, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	flows, err := s.repos.Interviews.ListFlows(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	var flow *entities.InterviewFlow
	for _, f := range flows {
		if f.ID == req.FlowID || f.RibbonFlowID == req.FlowID {
			flow = f
			break
		}
	}
	if flow == nil {
		return nil, pkgerrors.NewNotFoundError("interview flow")
	}
	return s.startInterview(ctx, actor, flow, req.PatientName)
}

func (s *InterviewService) startInterview(ctx context.Context, actor *Actor, flow *entities.InterviewFlow, patientName string) (*entities.Interview, error) {
	remote, err := s.voice.CreateInterview(ctx, flow.RibbonFlowID, map[string]string{
		"patient_name": patientName,
		"patient_id":   flow.PatientID,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	iv := &entities.Interview{
		ID:                newID(),
		RibbonInterviewID: remote.ID,
		FlowID:            flow.ID,
		PatientID:         flow.PatientID,
		PatientName:       patientName,
		InterviewURL:      remote.URL,
		Status:            entities.InterviewCreated,
		CreatedBy:         actor.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if remote.Status != "" {
		iv.Status = entities.InterviewStatus(remote.Status)
	}
	if err := s.repos.Interviews.SaveInterview(ctx, iv); err != nil {
		return nil, err
	}
	s.created("interview")
	return iv, nil
}

// Interviews returns the interviews the caller created, newest first.
func (s *InterviewService) Interviews(ctx context.Context, actor *Actor) ([]*entities.Interview, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repos.Interviews.ListInterviews(ctx, actor.UserID)
}

func (s *InterviewService) interview(ctx context.Context, actor *Actor, id string) (*entities.Interview, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	iv, err := s.repos.Interviews.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.CreatedBy != actor.UserID {
		if iv.PatientID == "" {
			return nil, pkgerrors.NewForbiddenError("not allowed to access this interview")
		}
		if err := s.access.Patient(ctx, actor, iv.PatientID); err != nil {
			return nil, err
		}
	}
	return iv, nil
}

// Status refreshes the stored status of an interview from the provider.
func (s *InterviewService) Status(ctx context.Context, actor *Actor, id string) (*entities.Interview, error) {
	iv, err := s.interview(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	remote, err := s.voice.GetInterview(ctx, iv.RibbonInterviewID)
	if err != nil {
		return nil, err
	}
	if remote.Status != "" && entities.InterviewStatus(remote.Status) != iv.Status && iv.Status != entities.InterviewCompleted {
		iv.Status = entities.InterviewStatus(remote.Status)
		iv.UpdatedAt = s.now()
		if err := s.repos.Interviews.SaveInterview(ctx, iv); err != nil {
			return nil, err
		}
	}
	return iv, nil
}

// CompleteWithResults fetches the answers of an interview, stores them as a
// memory of the patient and marks the interview completed.
func (s *InterviewService) CompleteWithResults(ctx context.Context, actor *Actor, id string, req ResultsRequest) (*InterviewResult, error) {
	iv, err := s.interview(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if iv.Status == entities.InterviewCompleted && iv.MemoryID != "" {
		return nil, pkgerrors.NewConflictError("interview already completed").WithDetails(map[string]interface{}{"memory_id": iv.MemoryID})
	}
	patientID := req.PatientID
	if patientID == "" {
		patientID = iv.PatientID
	}
	if err := s.access.Patient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	results, err := s.voice.GetResults(ctx, iv.RibbonInterviewID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	memory, err := MemoryFromResults(results, patientID, actor.UserID, now)
	if err != nil {
		return nil, err
	}
	if err := s.memories.store(ctx, memory); err != nil {
		return nil, err
	}

	iv.Complete(memory.ID, now)
	if err := s.repos.Interviews.SaveInterview(ctx, iv); err != nil {
		s.memories.discard(ctx, memory)
		return nil, err
	}
	s.memories.announce(ctx, memory)
	s.publish(ctx, events.NewInterviewCompleted(iv.ID, actor.UserID, patientID, memory.ID, now))
	s.log().Info("Interview completed",
		zap.String("interviewID", iv.ID),
		zap.String("memoryID", memory.ID),
		zap.Int("responses", len(results.Responses)))

	return &InterviewResult{Interview: iv, Memory: memory, Results: results}, nil
}

// MemoryInterview prepares the guided memory interview for a patient.
func (s *InterviewService) MemoryInterview(ctx context.Context, actor *Actor, patientID string) (*MemoryInterview, error) {
	if err := s.access.Patient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	name, err := s.patientName(ctx, patientID)
	if err != nil {
		return nil, err
	}

	flow, err := s.createFlow(ctx, actor, fmt.Sprintf("Memory Interview - %s", name), patientID, CompassionateQuestions)
	if err != nil {
		return nil, err
	}
	iv, err := s.startInterview(ctx, actor, flow, name)
	if err != nil {
		return nil, err
	}
	return &MemoryInterview{Flow: flow, Interview: iv, PatientName: name}, nil
}

func (s *InterviewService) patientName(ctx context.Context, patientID string) (string, error) {
	p, err := s.repos.Patients.GetByID(ctx, patientID)
	if err == nil && p.Name != "" {
		return p.Name, nil
	}
	if err != nil && !pkgerrors.IsNotFound(err) {
		return "", err
	}
	u, err := s.repos.Users.GetByID(ctx, patientID)
	if err == nil && u.Name != "" {
		return u.Name, nil
	}
	if err != nil && !pkgerrors.IsNotFound(err) {
		return "", err
	}
	return "", pkgerrors.NewNotFoundError("patient")
}
