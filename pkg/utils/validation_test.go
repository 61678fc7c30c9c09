package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type eventForm struct {
	Title     string `validate:"required,max=200"`
	Date      string `validate:"required,isodate"`
	StartTime string `validate:"omitempty,hhmm"`
	Priority  string `validate:"omitempty,oneof=low medium high urgent"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		form    eventForm
		wantErr string
	}{
		{
			name: "valid",
			form: eventForm{Title: "Take pills", Date: "2025-03-01", StartTime: "08:30", Priority: "high"},
		},
		{
			name:    "missing title",
			form:    eventForm{Date: "2025-03-01"},
			wantErr: "title is required",
		},
		{
			name:    "bad date",
			form:    eventForm{Title: "x", Date: "03/01/2025"},
			wantErr: "date must be a date in YYYY-MM-DD format",
		},
		{
			name:    "bad clock",
			form:    eventForm{Title: "x", Date: "2025-03-01", StartTime: "25:00"},
			wantErr: "starttime must be a time of day in HH:MM format",
		},
		{
			name:    "bad priority",
			form:    eventForm{Title: "x", Date: "2025-03-01", Priority: "whenever"},
			wantErr: "priority must be one of: low medium high urgent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.form)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
