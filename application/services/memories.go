package services

import (
	"context"
	"strings"
	"time"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	"mindbloom-backend/domain/events"
	"mindbloom-backend/pkg/common"
	"mindbloom-backend/pkg/utils"

	"go.uber.org/zap"
)

// MemoryRequest creates or replaces a memory. PatientID defaults to the caller.
type MemoryRequest struct {
	PatientID  string   `json:"patient_id" validate:"omitempty,max=100"`
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content" validate:"required,max=20000"`
	Mood       string   `json:"mood" validate:"omitempty,oneof=happy sad excited calm anxious neutral"`
	Category   string   `json:"category" validate:"omitempty,max=50"`
	Importance string   `json:"importance" validate:"omitempty,oneof=low medium high"`
	Tags       []string `json:"tags" validate:"max=20,dive,max=50"`
	Date       string   `json:"date" validate:"omitempty,isodate"`
}

// MemoryFilter narrows a memory listing.
type MemoryFilter struct {
	PatientID string
	Category  string
	common.ListParams
}

// MemoryService manages the memories gallery.
type MemoryService struct {
	Base
	repo       ports.MemoryRepository
	access     *AccessPolicy
	visualizer *Visualizer
}

// NewMemoryService creates the service.
func NewMemoryService(base Base, repo ports.MemoryRepository, access *AccessPolicy, visualizer *Visualizer) *MemoryService {
	return &MemoryService{Base: base, repo: repo, access: access, visualizer: visualizer}
}

// Create stores a memory with a fresh visualization.
func (s *MemoryService) Create(ctx context.Context, actor *Actor, req MemoryRequest) (*entities.Memory, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	patientID := req.PatientID
	if patientID == "" {
		patientID = actor.UserID
	}
	if err := s.access.Patient(ctx, actor, patientID); err != nil {
		return nil, err
	}

	now := s.now()
	m := &entities.Memory{
		ID:        newID(),
		UserID:    actor.UserID,
		PatientID: patientID,
		Source:    entities.SourceManual,
		CreatedAt: now,
	}
	applyMemory(m, req, now)
	m.Visualization = s.visualizer.Visualize(ctx, m.Title, m.Content, m.Mood)
	return m, s.Add(ctx, m)
}

// Add stores a memory built elsewhere, such as from a voice interview. A
// memory without a visualization gets one first.
func (s *MemoryService) Add(ctx context.Context, m *entities.Memory) error {
	if err := s.store(ctx, m); err != nil {
		return err
	}
	s.announce(ctx, m)
	return nil
}

func (s *MemoryService) store(ctx context.Context, m *entities.Memory) error {
	if m.Visualization == nil {
		m.Visualization = s.visualizer.Visualize(ctx, m.Title, m.Content, m.Mood)
	}
	return s.repo.Create(ctx, m)
}

func (s *MemoryService) announce(ctx context.Context, m *entities.Memory) {
	s.created("memory")
	s.publish(ctx, events.NewMemoryCreated(m.ID, m.UserID, m.PatientID, string(m.Source), m.CreatedAt))
}

// discard removes a stored memory that was never announced.
func (s *MemoryService) discard(ctx context.Context, m *entities.Memory) {
	if err := s.repo.Delete(ctx, m.ID); err != nil {
		s.log().Error("Failed to remove unlinked memory", zap.String("memoryID", m.ID), zap.Error(err))
	}
}

// List returns a patient's memories, newest first. The patient defaults to the caller.
func (s *MemoryService) List(ctx context.Context, actor *Actor, filter MemoryFilter) ([]*entities.Memory, *common.PaginationInfo, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	if filter.PatientID == "" {
		filter.PatientID = actor.UserID
	}
	if err := s.access.Patient(ctx, actor, filter.PatientID); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter)
}

// ForPatient returns a patient's memories to one of their caregivers.
func (s *MemoryService) ForPatient(ctx context.Context, actor *Actor, filter MemoryFilter) ([]*entities.Memory, *common.PaginationInfo, error) {
	if err := s.access.CaregiverOf(ctx, actor, filter.PatientID); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter)
}

func (s *MemoryService) list(ctx context.Context, filter MemoryFilter) ([]*entities.Memory, *common.PaginationInfo, error) {
	all, err := s.repo.ListByPatient(ctx, filter.PatientID)
	if err != nil {
		return nil, nil, err
	}
	if filter.Category != "" {
		matched := all[:0]
		for _, m := range all {
			if strings.EqualFold(m.Category, filter.Category) {
				matched = append(matched, m)
			}
		}
		all = matched
	}
	page, info := common.Page(all, filter.ListParams)
	return page, info, nil
}

// Get returns a memory the caller may read.
func (s *MemoryService) Get(ctx context.Context, actor *Actor, id string) (*entities.Memory, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != actor.UserID {
		if err := s.access.Patient(ctx, actor, m.PatientID); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Update replaces a memory. The visualization is regenerated when the
// title, content or mood change.
func (s *MemoryService) Update(ctx context.Context, actor *Actor, id string, req MemoryRequest) (*entities.Memory, error) {
	m, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := [3]string{m.Title, m.Content, string(m.Mood)}
	applyMemory(m, req, s.now())
	if m.Visualization == nil || before != [3]string{m.Title, m.Content, string(m.Mood)} {
		m.Visualization = s.visualizer.Visualize(ctx, m.Title, m.Content, m.Mood)
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a memory.
func (s *MemoryService) Delete(ctx context.Context, actor *Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// TogglePin flips the pinned flag of a memory.
func (s *MemoryService) TogglePin(ctx context.Context, actor *Actor, id string) (*entities.Memory, error) {
	m, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	m.TogglePin(s.now())
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Visualize regenerates the visualization of a memory.
func (s *MemoryService) Visualize(ctx context.Context, actor *Actor, id string) (*entities.Memory, error) {
	m, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	m.Visualization = s.visualizer.Visualize(ctx, m.Title, m.Content, m.Mood)
	m.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func applyMemory(m *entities.Memory, req MemoryRequest, now time.Time) {
	m.Title = req.Title
	m.Content = req.Content
	m.Mood = valueobjects.ParseMood(req.Mood)
	m.Category = req.Category
	if m.Category == "" {
		m.Category = "general"
	}
	m.Importance = req.Importance
	if m.Importance == "" {
		m.Importance = "medium"
	}
	m.Tags = nonNil(req.Tags)
	m.Date = req.Date
	if m.Date == "" {
		m.Date = utils.DateOf(now)
	}
	m.UpdatedAt = now
}
