package entities

import "time"

// InterviewStatus mirrors the status reported by the voice-interview provider.
type InterviewStatus string

const (
	InterviewCreated    InterviewStatus = "created"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
)

// InterviewFlow is a named, ordered set of questions used to elicit memories by voice.
type InterviewFlow struct {
	ID           string    `json:"id" dynamodbav:"id"`
	RibbonFlowID string    `json:"ribbon_flow_id" dynamodbav:"ribbon_flow_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	PatientID    string    `json:"patient_id,omitempty" dynamodbav:"patient_id,omitempty"`
	Questions    []string  `json:"questions" dynamodbav:"questions"`
	CreatedBy    string    `json:"created_by" dynamodbav:"created_by"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Interview is one voice session run against a flow.
type Interview struct {
	ID                string          `json:"id" dynamodbav:"id"`
	RibbonInterviewID string          `json:"ribbon_interview_id" dynamodbav:"ribbon_interview_id"`
	FlowID            string          `json:"flow_id" dynamodbav:"flow_id"`
	PatientID         string          `json:"patient_id,omitempty" dynamodbav:"patient_id,omitempty"`
	PatientName       string          `json:"patient_name,omitempty" dynamodbav:"patient_name,omitempty"`
	InterviewURL      string          `json:"interview_url" dynamodbav:"interview_url"`
	Status            InterviewStatus `json:"status" dynamodbav:"status"`
	MemoryID          string          `json:"memory_id,omitempty" dynamodbav:"memory_id,omitempty"`
	CreatedBy         string          `json:"created_by" dynamodbav:"created_by"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty" dynamodbav:"completed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" dynamodbav:"updated_at"`
}

// Complete records the memory produced from the interview.
func (i *Interview) Complete(memoryID string, now time.Time) {
	i.Status = InterviewCompleted
	i.MemoryID = memoryID
	i.CompletedAt = &now
	i.UpdatedAt = now
}
