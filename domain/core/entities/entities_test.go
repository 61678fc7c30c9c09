package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendarEvent_IsOverdue(t *testing.T) {
	tests := []struct {
		name  string
		event CalendarEvent
		want  bool
	}{
		{"earlier day", CalendarEvent{Date: "2025-03-09", StartTime: "23:00"}, true},
		{"today, earlier start", CalendarEvent{Date: "2025-03-10", StartTime: "08:00"}, true},
		{"today, later start", CalendarEvent{Date: "2025-03-10", StartTime: "18:00"}, false},
		{"today, no start time", CalendarEvent{Date: "2025-03-10"}, false},
		{"future", CalendarEvent{Date: "2025-03-11", StartTime: "08:00"}, false},
		{"completed", CalendarEvent{Date: "2025-03-01", Completed: true}, false},
		{"cancelled", CalendarEvent{Date: "2025-03-01", Status: StatusCancelled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.IsOverdue("2025-03-10", "12:30"))
		})
	}
}

func TestCalendarEvent_ToggleComplete(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	e := &CalendarEvent{Status: StatusPending}

	e.ToggleComplete(now)
	assert.True(t, e.Completed)
	assert.Equal(t, StatusCompleted, e.Status)
	assert.Equal(t, &now, e.CompletedAt)

	e.ToggleComplete(now)
	assert.False(t, e.Completed)
	assert.Equal(t, StatusPending, e.Status)
	assert.Nil(t, e.CompletedAt)
}

func TestNaturalKeys(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	a := &JournalEntry{UserID: "u1", Title: "Garden Day", CreatedAt: created}
	b := &JournalEntry{UserID: "u1", Title: "  garden day ", CreatedAt: created.Add(3 * time.Hour)}
	c := &JournalEntry{UserID: "u1", Title: "Garden Day", CreatedAt: created.Add(24 * time.Hour)}

	assert.Equal(t, a.NaturalKey(), b.NaturalKey())
	assert.NotEqual(t, a.NaturalKey(), c.NaturalKey())

	m := &Memory{PatientID: "u1", Title: "Garden Day", CreatedAt: created}
	assert.NotEqual(t, a.NaturalKey(), m.NaturalKey(), "kinds never collide")
}

func TestCaregiverAssignment(t *testing.T) {
	now := time.Now()
	c := &Caregiver{}
	c.AssignPatient("p1", now)
	c.AssignPatient("p1", now)
	c.AssignPatient("p2", now)
	assert.Equal(t, []string{"p1", "p2"}, c.Patients)

	c.UnassignPatient("p1", now)
	assert.False(t, c.HasPatient("p1"))
	assert.True(t, c.HasPatient("p2"))
}

func TestMemory_SearchText(t *testing.T) {
	m := &Memory{Title: "Sunday Dinner", Content: "Mom made PIE", Tags: []string{"Family"}}
	assert.Equal(t, "sunday dinner mom made pie family", m.SearchText())
}
