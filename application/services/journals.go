package services

import (
	"context"
	"time"

	"mindbloom-backend/application/analysis"
	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	"mindbloom-backend/domain/events"
	"mindbloom-backend/pkg/common"
)

// JournalRequest creates or replaces a journal entry.
type JournalRequest struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Content   string   `json:"content" validate:"required,max=20000"`
	Mood      string   `json:"mood" validate:"omitempty,oneof=happy sad excited calm anxious neutral"`
	Tags      []string `json:"tags" validate:"max=20,dive,max=50"`
	MediaURLs []string `json:"media_urls" validate:"max=20"`
	Location  string   `json:"location" validate:"max=200"`
	People    []string `json:"people" validate:"max=50"`
}

// JournalFilter narrows a journal listing.
type JournalFilter struct {
	PinnedOnly bool
	common.ListParams
}

// JournalService manages journal entries.
type JournalService struct {
	Base
	repo   ports.JournalRepository
	access *AccessPolicy
}

// NewJournalService creates the service.
func NewJournalService(base Base, repo ports.JournalRepository, access *AccessPolicy) *JournalService {
	return &JournalService{Base: base, repo: repo, access: access}
}

// Insights are computed locally from the entry text.
func Insights(content string) *entities.JournalInsights {
	f := analysis.Analyze(content)
	return &entities.JournalInsights{
		Sentiment:        f.Tone,
		KeyThemes:        append([]string{}, f.Themes...),
		SuggestedPrompts: analysis.RealTimeFeedback(content).FollowUpQuestions,
	}
}

// Create writes a new entry for the caller.
func (s *JournalService) Create(ctx context.Context, actor *Actor, req JournalRequest) (*entities.JournalEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	now := s.now()
	entry := &entities.JournalEntry{
		ID:        newID(),
		UserID:    actor.UserID,
		CreatedAt: now,
	}
	applyJournal(entry, req, now)
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.created("journal")
	s.publish(ctx, events.NewJournalCreated(entry.ID, entry.UserID, string(entry.Mood), now))
	return entry, nil
}

// List returns the caller's entries, newest first.
func (s *JournalService) List(ctx context.Context, actor *Actor, filter JournalFilter) ([]*entities.JournalEntry, *common.PaginationInfo, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, actor.UserID, filter)
}

// ForPatient returns a patient's entries to one of their caregivers.
func (s *JournalService) ForPatient(ctx context.Context, actor *Actor, patientID string, filter JournalFilter) ([]*entities.JournalEntry, *common.PaginationInfo, error) {
	if err := s.access.CaregiverOf(ctx, actor, patientID); err != nil {
		return nil, nil, err
	}
	return s.list(ctx, patientID, filter)
}

func (s *JournalService) list(ctx context.Context, userID string, filter JournalFilter) ([]*entities.JournalEntry, *common.PaginationInfo, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if filter.PinnedOnly {
		pinned := all[:0]
		for _, e := range all {
			if e.IsPinned {
				pinned = append(pinned, e)
			}
		}
		all = pinned
	}
	page, info := common.Page(all, filter.ListParams)
	return page, info, nil
}

// Get returns an entry the caller may read.
func (s *JournalService) Get(ctx context.Context, actor *Actor, id string) (*entities.JournalEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownerOrAccess(ctx, s.access, actor, entry.UserID); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update replaces an entry. Insights are recomputed when the content changes.
func (s *JournalService) Update(ctx context.Context, actor *Actor, id string, req JournalRequest) (*entities.JournalEntry, error) {
	entry, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyJournal(entry, req, s.now())
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes an entry.
func (s *JournalService) Delete(ctx context.Context, actor *Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// TogglePin flips the pinned flag of an entry.
func (s *JournalService) TogglePin(ctx context.Context, actor *Actor, id string) (*entities.JournalEntry, error) {
	entry, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	entry.TogglePin(s.now())
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func applyJournal(entry *entities.JournalEntry, req JournalRequest, now time.Time) {
	if entry.Insights == nil || entry.Content != req.Content {
		entry.Insights = Insights(req.Content)
	}
	entry.Title = req.Title
	entry.Content = req.Content
	entry.Mood = valueobjects.ParseMood(req.Mood)
	entry.Tags = nonNil(req.Tags)
	entry.MediaURLs = nonNil(req.MediaURLs)
	entry.Location = req.Location
	entry.People = nonNil(req.People)
	entry.UpdatedAt = now
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
