package model

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Address        string          `json:"address"`
	StartDateTime  time.Time       `json:"startDateTime"`
	EndDateTime    time.Time       `json:"endDateTime"`
	EstimateID     *uuid.UUID      `json:"estimateId,omitempty"`
	EstimateNumber *string         `json:"estimateNumber,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Assignments    []JobAssignment `json:"assignments" gorm:"-"`
}

type JobAssignment struct {
	ID           uuid.UUID `json:"id"`
	JobID        uuid.UUID `json:"jobId"`
	EmployeeID   uuid.UUID `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	EmployeeRole Role      `json:"employeeRole"`
	CreatedAt    time.Time `json:"createdAt"`
}

// JobChanges carries a partial job update; nil fields are left untouched.
// A non-nil EmployeeIDs replaces the whole assignment set.
type JobChanges struct {
	Title         *string
	Address       *string
	StartDateTime *time.Time
	EndDateTime   *time.Time
	EstimateID    *uuid.UUID
	EmployeeIDs   []uuid.UUID
}

type JobFilter struct {
	From *time.Time
	To   *time.Time
}
