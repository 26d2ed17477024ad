package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/repository"
)

const (
	jobDayStartHour = 9
	jobDayEndHour   = 17
)

type JobStore interface {
	Create(ctx context.Context, job model.Job, employeeIDs []uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter model.JobFilter) ([]model.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	Update(ctx context.Context, id uuid.UUID, changes model.JobChanges) (*model.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddAssignments(ctx context.Context, jobID uuid.UUID, employeeIDs []uuid.UUID) error
	RemoveAssignment(ctx context.Context, jobID, assignmentID uuid.UUID) error
}

type EmployeeChecker interface {
	MissingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type JobService struct {
	jobs      JobStore
	estimates EstimateReader
	employees EmployeeChecker
	loc       *time.Location
}

type CreateJobInput struct {
	Title         string      `json:"title" validate:"required,min=2"`
	Address       string      `json:"address" validate:"required,min=3"`
	StartDateTime string      `json:"startDateTime" validate:"required"`
	EndDateTime   string      `json:"endDateTime" validate:"required"`
	EstimateID    *uuid.UUID  `json:"estimateId"`
	EmployeeIDs   []uuid.UUID `json:"employeeIds"`
}

type UpdateJobInput struct {
	Title         *string      `json:"title" validate:"omitempty,min=2"`
	Address       *string      `json:"address" validate:"omitempty,min=3"`
	StartDateTime *string      `json:"startDateTime"`
	EndDateTime   *string      `json:"endDateTime"`
	EstimateID    *uuid.UUID   `json:"estimateId"`
	EmployeeIDs   *[]uuid.UUID `json:"employeeIds"`
}

type ListJobsInput struct {
	From string
	To   string
}

func NewJobService(jobs JobStore, estimates EstimateReader, employees EmployeeChecker, loc *time.Location) *JobService {
	return &JobService{jobs: jobs, estimates: estimates, employees: employees, loc: loc}
}

func (s *JobService) Create(ctx context.Context, input CreateJobInput) (*model.Job, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Address = strings.TrimSpace(input.Address)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	start, err := parseTimestamp("startDateTime", input.StartDateTime, s.loc)
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp("endDateTime", input.EndDateTime, s.loc)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDateTime must not be before startDateTime", ErrInvalidInput)
	}
	if input.EstimateID != nil {
		if _, err := s.estimates.Get(ctx, *input.EstimateID); err != nil {
			return nil, notFound(err, "estimate")
		}
	}

	return s.create(ctx, model.Job{
		Title:         input.Title,
		Address:       input.Address,
		StartDateTime: start,
		EndDateTime:   end,
		EstimateID:    input.EstimateID,
	}, input.EmployeeIDs)
}

// CreateFromEstimate schedules a working day on the estimate's moving date.
// Only ACCEPTED or INVOICED estimates qualify.
func (s *JobService) CreateFromEstimate(ctx context.Context, estimateID uuid.UUID, employeeIDs []uuid.UUID) (*model.Job, error) {
	estimate, err := s.estimates.Get(ctx, estimateID)
	if err != nil {
		return nil, notFound(err, "estimate")
	}
	if estimate.Status != model.EstimateStatusAccepted && estimate.Status != model.EstimateStatusInvoiced {
		return nil, fmt.Errorf("%w: only accepted estimates can be scheduled, %s is %s", ErrConflict, estimate.Number, estimate.Status)
	}

	year, month, day := estimate.MovingDate.In(s.loc).Date()
	return s.create(ctx, model.Job{
		Title:         "Turnover Painting - " + estimate.CustomerName,
		Address:       estimate.CustomerJobAddress,
		StartDateTime: time.Date(year, month, day, jobDayStartHour, 0, 0, 0, s.loc),
		EndDateTime:   time.Date(year, month, day, jobDayEndHour, 0, 0, 0, s.loc),
		EstimateID:    &estimate.ID,
	}, employeeIDs)
}

func (s *JobService) create(ctx context.Context, job model.Job, employeeIDs []uuid.UUID) (*model.Job, error) {
	employeeIDs = uniqueIDs(employeeIDs)
	if err := s.requireEmployees(ctx, employeeIDs); err != nil {
		return nil, err
	}
	saved, err := s.jobs.Create(ctx, job, employeeIDs)
	if err != nil {
		return nil, mapJobError(err)
	}
	return saved, nil
}

func (s *JobService) List(ctx context.Context, input ListJobsInput) ([]model.Job, error) {
	var filter model.JobFilter
	var err error
	if filter.From, err = parseOptionalTimestamp("from", &input.From, s.loc); err != nil {
		return nil, err
	}
	if filter.To, err = parseOptionalTimestamp("to", &input.To, s.loc); err != nil {
		return nil, err
	}
	return s.jobs.List(ctx, filter)
}

func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "job")
	}
	return job, nil
}

// Update applies a partial change. A present employeeIds list replaces the
// assignments in the same transaction as the field changes.
func (s *JobService) Update(ctx context.Context, id uuid.UUID, input UpdateJobInput) (*model.Job, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := model.JobChanges{
		Title:      trimmed(input.Title),
		Address:    trimmed(input.Address),
		EstimateID: input.EstimateID,
	}
	if changes.StartDateTime, err = parseOptionalTimestamp("startDateTime", input.StartDateTime, s.loc); err != nil {
		return nil, err
	}
	if changes.EndDateTime, err = parseOptionalTimestamp("endDateTime", input.EndDateTime, s.loc); err != nil {
		return nil, err
	}
	start, end := current.StartDateTime, current.EndDateTime
	if changes.StartDateTime != nil {
		start = *changes.StartDateTime
	}
	if changes.EndDateTime != nil {
		end = *changes.EndDateTime
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDateTime must not be before startDateTime", ErrInvalidInput)
	}
	if input.EstimateID != nil {
		if _, err := s.estimates.Get(ctx, *input.EstimateID); err != nil {
			return nil, notFound(err, "estimate")
		}
	}
	if input.EmployeeIDs != nil {
		changes.EmployeeIDs = append([]uuid.UUID{}, uniqueIDs(*input.EmployeeIDs)...)
		if err := s.requireEmployees(ctx, changes.EmployeeIDs); err != nil {
			return nil, err
		}
	}

	job, err := s.jobs.Update(ctx, id, changes)
	if err != nil {
		return nil, mapJobError(err)
	}
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.jobs.Delete(ctx, id); err != nil {
		return notFound(err, "job")
	}
	return nil
}

// AddAssignments assigns more employees; ones already on the job are skipped.
func (s *JobService) AddAssignments(ctx context.Context, id uuid.UUID, employeeIDs []uuid.UUID) (*model.Job, error) {
	employeeIDs = uniqueIDs(employeeIDs)
	if len(employeeIDs) == 0 {
		return nil, fmt.Errorf("%w: employeeIds must not be empty", ErrInvalidInput)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.requireEmployees(ctx, employeeIDs); err != nil {
		return nil, err
	}
	if err := s.jobs.AddAssignments(ctx, id, employeeIDs); err != nil {
		return nil, mapJobError(err)
	}
	return s.Get(ctx, id)
}

func (s *JobService) RemoveAssignment(ctx context.Context, id, assignmentID uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.jobs.RemoveAssignment(ctx, id, assignmentID); err != nil {
		return notFound(err, "assignment")
	}
	return nil
}

func (s *JobService) requireEmployees(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.employees.MissingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: employee %s", ErrNotFound, missing[0])
	}
	return nil
}

func mapJobError(err error) error {
	if errors.Is(err, repository.ErrUnknownEmployee) {
		return fmt.Errorf("%w: employee", ErrNotFound)
	}
	return notFound(err, "job")
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
