package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/metrics"
	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/repository"
)

type TimeEntryStore interface {
	Create(ctx context.Context, entry model.TimeEntry) (*model.TimeEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TimeEntry, error)
	FindOpen(ctx context.Context, employeeID uuid.UUID) (*model.TimeEntry, error)
	Close(ctx context.Context, id uuid.UUID, clockOut time.Time, durationMinutes int64) (*model.TimeEntry, error)
	List(ctx context.Context, filter model.TimeEntryFilter) ([]model.TimeEntry, error)
}

type EmployeeReader interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Employee, error)
}

type TimesheetExporter interface {
	Timesheet(sheet model.Timesheet) ([]byte, error)
}

type TimeService struct {
	entries   TimeEntryStore
	employees EmployeeReader
	exporter  TimesheetExporter
	loc       *time.Location
	metrics   *metrics.Metrics
	now       func() time.Time
}

type PunchInput struct {
	EmployeeID uuid.UUID         `json:"employeeId" validate:"required"`
	Action     model.PunchAction `json:"action" validate:"required,oneof=IN OUT"`
}

type CreateTimeEntryInput struct {
	EmployeeID uuid.UUID `json:"employeeId" validate:"required"`
	ClockIn    *string   `json:"clockIn"`
	ClockOut   *string   `json:"clockOut"`
}

type UpdateTimeEntryInput struct {
	ClockOut *string `json:"clockOut"`
}

type ListTimeEntriesInput struct {
	EmployeeID *uuid.UUID
	From       string
	To         string
	OpenOnly   bool
}

func NewTimeService(
	entries TimeEntryStore,
	employees EmployeeReader,
	exporter TimesheetExporter,
	loc *time.Location,
	m *metrics.Metrics,
) *TimeService {
	return &TimeService{
		entries:   entries,
		employees: employees,
		exporter:  exporter,
		loc:       loc,
		metrics:   m,
		now:       time.Now,
	}
}

// Punch moves an employee between clocked out and clocked in. IN with an
// open entry and OUT without one are conflicts.
func (s *TimeService) Punch(ctx context.Context, input PunchInput) (*model.TimeEntry, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.requireEmployee(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	open, err := s.entries.FindOpen(ctx, input.EmployeeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := s.now().UTC()

	var entry *model.TimeEntry
	switch input.Action {
	case model.PunchIn:
		if open != nil {
			return nil, fmt.Errorf("%w: employee is already clocked in", ErrConflict)
		}
		entry, err = s.entries.Create(ctx, model.TimeEntry{EmployeeID: input.EmployeeID, ClockIn: now})
		if errors.Is(err, repository.ErrOpenTimeEntry) {
			return nil, fmt.Errorf("%w: employee is already clocked in", ErrConflict)
		}
	case model.PunchOut:
		if open == nil {
			return nil, fmt.Errorf("%w: no open clock-in entry found", ErrConflict)
		}
		entry, err = s.entries.Close(ctx, open.ID, now, model.DurationMinutes(open.ClockIn, now))
	}
	if err != nil {
		return nil, err
	}
	s.metrics.Punch(string(input.Action))
	return entry, nil
}

// Create records a manual entry. clockIn defaults to now; the duration is set
// only when clockOut is given.
func (s *TimeService) Create(ctx context.Context, input CreateTimeEntryInput) (*model.TimeEntry, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.requireEmployee(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	clockIn := s.now().UTC()
	if parsed, err := parseOptionalTimestamp("clockIn", input.ClockIn, s.loc); err != nil {
		return nil, err
	} else if parsed != nil {
		clockIn = *parsed
	}
	clockOut, err := parseOptionalTimestamp("clockOut", input.ClockOut, s.loc)
	if err != nil {
		return nil, err
	}

	entry := model.TimeEntry{EmployeeID: input.EmployeeID, ClockIn: clockIn, ClockOut: clockOut}
	if clockOut != nil {
		duration := model.DurationMinutes(clockIn, *clockOut)
		entry.DurationMinutes = &duration
	}

	saved, err := s.entries.Create(ctx, entry)
	switch {
	case errors.Is(err, repository.ErrOpenTimeEntry):
		return nil, fmt.Errorf("%w: employee is already clocked in", ErrConflict)
	case errors.Is(err, repository.ErrUnknownEmployee):
		return nil, fmt.Errorf("%w: employee", ErrNotFound)
	case err != nil:
		return nil, err
	}
	return saved, nil
}

// Update sets clockOut (now when omitted) and recomputes the duration from
// the stored clockIn.
func (s *TimeService) Update(ctx context.Context, id uuid.UUID, input UpdateTimeEntryInput) (*model.TimeEntry, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "time entry")
	}

	clockOut := s.now().UTC()
	if parsed, err := parseOptionalTimestamp("clockOut", input.ClockOut, s.loc); err != nil {
		return nil, err
	} else if parsed != nil {
		clockOut = *parsed
	}

	updated, err := s.entries.Close(ctx, entry.ID, clockOut, model.DurationMinutes(entry.ClockIn, clockOut))
	if err != nil {
		return nil, notFound(err, "time entry")
	}
	return updated, nil
}

func (s *TimeService) List(ctx context.Context, input ListTimeEntriesInput) ([]model.TimeEntry, error) {
	filter := model.TimeEntryFilter{EmployeeID: input.EmployeeID, OpenOnly: input.OpenOnly}
	var err error
	if filter.From, err = parseOptionalTimestamp("from", &input.From, s.loc); err != nil {
		return nil, err
	}
	if filter.To, err = parseOptionalTimestamp("to", &input.To, s.loc); err != nil {
		return nil, err
	}
	return s.entries.List(ctx, filter)
}

func (s *TimeService) ClockedIn(ctx context.Context) ([]model.TimeEntry, error) {
	return s.entries.List(ctx, model.TimeEntryFilter{OpenOnly: true})
}

// Timesheet lists an employee's entries oldest first. Open entries do not
// count towards the total.
func (s *TimeService) Timesheet(ctx context.Context, employeeID uuid.UUID, from, to string) (*model.Timesheet, error) {
	employee, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, notFound(err, "employee")
	}

	sheet := model.Timesheet{Employee: *employee}
	if sheet.From, err = parseOptionalTimestamp("from", &from, s.loc); err != nil {
		return nil, err
	}
	if sheet.To, err = parseOptionalTimestamp("to", &to, s.loc); err != nil {
		return nil, err
	}

	entries, err := s.entries.List(ctx, model.TimeEntryFilter{
		EmployeeID: &employeeID,
		From:       sheet.From,
		To:         sheet.To,
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b model.TimeEntry) int {
		return a.ClockIn.Compare(b.ClockIn)
	})

	sheet.Entries = entries
	if sheet.Entries == nil {
		sheet.Entries = []model.TimeEntry{}
	}
	for _, entry := range entries {
		if entry.DurationMinutes != nil {
			sheet.TotalMinutes += *entry.DurationMinutes
		}
	}
	return &sheet, nil
}

func (s *TimeService) ExportTimesheet(ctx context.Context, employeeID uuid.UUID, from, to string) (*Document, error) {
	sheet, err := s.Timesheet(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	content, err := s.exporter.Timesheet(*sheet)
	if err != nil {
		return nil, err
	}
	name := strings.Join(strings.Fields(strings.ToLower(sheet.Employee.Name)), "-")
	return &Document{
		FileName: fmt.Sprintf("timesheet-%s-%s.xlsx", name, s.now().In(s.loc).Format("20060102")),
		Content:  content,
	}, nil
}

func (s *TimeService) requireEmployee(ctx context.Context, id uuid.UUID) error {
	if _, err := s.employees.Get(ctx, id); err != nil {
		return notFound(err, "employee")
	}
	return nil
}
