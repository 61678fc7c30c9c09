package abstractions

import (
	"time"

	"mindbloom-backend/domain/core/entities"
)

// Document kinds stored by MindBloom.
var (
	UserKind = Kind[entities.User]{
		Name:       "USER",
		ID:         func(u *entities.User) string { return u.ID },
		CreatedAt:  func(u *entities.User) time.Time { return u.CreatedAt },
		NaturalKey: (*entities.User).NaturalKey,
	}
	PatientKind = Kind[entities.Patient]{
		Name:      "PATIENT",
		ID:        func(p *entities.Patient) string { return p.ID },
		CreatedAt: func(p *entities.Patient) time.Time { return p.CreatedAt },
	}
	CaregiverKind = Kind[entities.Caregiver]{
		Name:      "CAREGIVER",
		ID:        func(c *entities.Caregiver) string { return c.ID },
		CreatedAt: func(c *entities.Caregiver) time.Time { return c.CreatedAt },
	}
	JournalKind = Kind[entities.JournalEntry]{
		Name:       "JOURNAL",
		ID:         func(j *entities.JournalEntry) string { return j.ID },
		Owner:      func(j *entities.JournalEntry) string { return j.UserID },
		CreatedAt:  func(j *entities.JournalEntry) time.Time { return j.CreatedAt },
		NaturalKey: (*entities.JournalEntry).NaturalKey,
	}
	MemoryKind = Kind[entities.Memory]{
		Name:       "MEMORY",
		ID:         func(m *entities.Memory) string { return m.ID },
		Owner:      func(m *entities.Memory) string { return m.PatientID },
		CreatedAt:  func(m *entities.Memory) time.Time { return m.CreatedAt },
		NaturalKey: (*entities.Memory).NaturalKey,
	}
	CalendarKind = Kind[entities.CalendarEvent]{
		Name:       "EVENT",
		ID:         func(e *entities.CalendarEvent) string { return e.ID },
		Owner:      func(e *entities.CalendarEvent) string { return e.UserID },
		CreatedAt:  func(e *entities.CalendarEvent) time.Time { return e.CreatedAt },
		NaturalKey: (*entities.CalendarEvent).NaturalKey,
	}
	FlowKind = Kind[entities.InterviewFlow]{
		Name:      "FLOW",
		ID:        func(f *entities.InterviewFlow) string { return f.ID },
		Owner:     func(f *entities.InterviewFlow) string { return f.CreatedBy },
		CreatedAt: func(f *entities.InterviewFlow) time.Time { return f.CreatedAt },
	}
	InterviewKind = Kind[entities.Interview]{
		Name:      "INTERVIEW",
		ID:        func(i *entities.Interview) string { return i.ID },
		Owner:     func(i *entities.Interview) string { return i.CreatedBy },
		CreatedAt: func(i *entities.Interview) time.Time { return i.CreatedAt },
	}
	ChatKind = Kind[entities.ChatEntry]{
		Name:      "CHAT",
		ID:        func(c *entities.ChatEntry) string { return c.ID },
		Owner:     func(c *entities.ChatEntry) string { return c.UserID },
		CreatedAt: func(c *entities.ChatEntry) time.Time { return c.CreatedAt },
	}
	AnalysisKind = Kind[entities.ResponseAnalysis]{
		Name:      "ANALYSIS",
		ID:        func(a *entities.ResponseAnalysis) string { return a.ID },
		Owner:     func(a *entities.ResponseAnalysis) string { return a.PatientID },
		CreatedAt: func(a *entities.ResponseAnalysis) time.Time { return a.CreatedAt },
	}
	MediaKind = Kind[entities.MediaFile]{
		Name:      "MEDIA",
		ID:        func(m *entities.MediaFile) string { return m.ID },
		Owner:     func(m *entities.MediaFile) string { return m.UserID },
		CreatedAt: func(m *entities.MediaFile) time.Time { return m.CreatedAt },
	}
)
