package entities

import (
	"slices"
	"time"
)

// Patient is the care profile of a person living with dementia. When the
// patient has an account, the profile shares the account's ID.
type Patient struct {
	ID          string            `json:"id" dynamodbav:"id"`
	Name        string            `json:"name" dynamodbav:"name"`
	Age         int               `json:"age,omitempty" dynamodbav:"age,omitempty"`
	Email       string            `json:"email,omitempty" dynamodbav:"email,omitempty"`
	CaregiverID string            `json:"caregiver_id,omitempty" dynamodbav:"caregiver_id,omitempty"`
	MedicalInfo map[string]string `json:"medical_info,omitempty" dynamodbav:"medical_info,omitempty"`
	CreatedAt   time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// Caregiver is the profile of a person looking after patients. Patients is
// kept in step with each patient's CaregiverID.
type Caregiver struct {
	ID             string    `json:"id" dynamodbav:"id"`
	Name           string    `json:"name" dynamodbav:"name"`
	Email          string    `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Specialization string    `json:"specialization,omitempty" dynamodbav:"specialization,omitempty"`
	Patients       []string  `json:"patients" dynamodbav:"patients"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// HasPatient reports whether patientID is assigned to this caregiver.
func (c *Caregiver) HasPatient(patientID string) bool {
	return slices.Contains(c.Patients, patientID)
}

// AssignPatient adds patientID to the caregiver's list once.
func (c *Caregiver) AssignPatient(patientID string, now time.Time) {
	c.Patients = toggle(c.Patients, patientID, true)
	c.UpdatedAt = now
}

// UnassignPatient removes patientID from the caregiver's list.
func (c *Caregiver) UnassignPatient(patientID string, now time.Time) {
	c.Patients = toggle(c.Patients, patientID, false)
	c.UpdatedAt = now
}
