package entities

import (
	"slices"
	"time"
)

// Role is the access role of an account.
type Role string

const (
	RoleUser      Role = "user"
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePatient, RoleCaregiver, RoleAdmin:
		return true
	}
	return false
}

// User is an account. Its ID is the identity provider subject.
type User struct {
	ID          string            `json:"id" dynamodbav:"id"`
	Email       string            `json:"email" dynamodbav:"email"`
	Name        string            `json:"name" dynamodbav:"name"`
	Role        Role              `json:"role" dynamodbav:"role"`
	Profile     map[string]string `json:"profile,omitempty" dynamodbav:"profile,omitempty"`
	CaregiverID string            `json:"caregiver_id,omitempty" dynamodbav:"caregiver_id,omitempty"`
	Patients    []string          `json:"patients,omitempty" dynamodbav:"patients,omitempty"`
	CreatedAt   time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// NewUser creates an account with the default role when role is empty.
func NewUser(id, email, name string, role Role, now time.Time) *User {
	if !role.Valid() {
		role = RoleUser
	}
	return &User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      role,
		Profile:   map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NaturalKey identifies duplicate accounts by email.
func (u *User) NaturalKey() string {
	return naturalKey("user", u.Email)
}

// IsCaregiver reports whether the account may look after patients.
func (u *User) IsCaregiver() bool {
	return u.Role == RoleCaregiver || u.Role == RoleAdmin
}

// ManagesPatient reports whether patientID is on the caregiver's list.
func (u *User) ManagesPatient(patientID string) bool {
	return slices.Contains(u.Patients, patientID)
}

// AddPatient puts patientID on the caregiver's list once.
func (u *User) AddPatient(patientID string, now time.Time) {
	u.Patients = toggle(u.Patients, patientID, true)
	u.UpdatedAt = now
}
