package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type PunchAction string

const (
	PunchIn  PunchAction = "IN"
	PunchOut PunchAction = "OUT"
)

type TimeEntry struct {
	ID              uuid.UUID  `json:"id"`
	EmployeeID      uuid.UUID  `json:"employeeId"`
	EmployeeName    string     `json:"employeeName"`
	ClockIn         time.Time  `json:"clockIn"`
	ClockOut        *time.Time `json:"clockOut,omitempty"`
	DurationMinutes *int64     `json:"durationMinutes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (e TimeEntry) Open() bool {
	return e.ClockOut == nil
}

// DurationMinutes rounds the elapsed time to whole minutes and never goes
// below zero.
func DurationMinutes(clockIn, clockOut time.Time) int64 {
	minutes := math.Round(float64(clockOut.Sub(clockIn).Milliseconds()) / 60000)
	if minutes < 0 {
		return 0
	}
	return int64(minutes)
}

type TimeEntryFilter struct {
	EmployeeID *uuid.UUID
	From       *time.Time
	To         *time.Time
	OpenOnly   bool
}

type Timesheet struct {
	Employee     Employee    `json:"employee"`
	From         *time.Time  `json:"from,omitempty"`
	To           *time.Time  `json:"to,omitempty"`
	Entries      []TimeEntry `json:"entries"`
	TotalMinutes int64       `json:"totalMinutes"`
}
