package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/finishing-touch/internal/model"
)

type jobFixture struct {
	service   *JobService
	jobs      *fakeJobStore
	estimates *fakeEstimateStore
	alice     model.Employee
	bob       model.Employee
}

func newJobFixture(t *testing.T, loc *time.Location) jobFixture {
	t.Helper()
	alice := model.Employee{ID: uuid.New(), Name: "Alice", Role: model.RoleEmployee}
	bob := model.Employee{ID: uuid.New(), Name: "Bob", Role: model.RoleManager}
	employees := newFakeEmployeeStore(alice, bob)
	jobs := newFakeJobStore(employees)
	estimates := newFakeEstimateStore(newFakeInvoiceStore())
	return jobFixture{
		service:   NewJobService(jobs, estimates, employees, loc),
		jobs:      jobs,
		estimates: estimates,
		alice:     alice,
		bob:       bob,
	}
}

func TestJobService_CreateFromEstimate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	f := newJobFixture(t, loc)

	estimate := f.estimates.add(model.Estimate{
		Number:             "EST-000010",
		Status:             model.EstimateStatusAccepted,
		MovingDate:         time.Date(2026, 6, 1, 22, 30, 0, 0, time.UTC),
		CustomerName:       "Dana Levi",
		CustomerJobAddress: "12 Herzl St",
	})

	job, err := f.service.CreateFromEstimate(context.Background(), estimate.ID, []uuid.UUID{f.alice.ID, f.alice.ID})
	require.NoError(t, err)

	assert.Equal(t, "Turnover Painting - Dana Levi", job.Title)
	assert.Equal(t, "12 Herzl St", job.Address)
	require.NotNil(t, job.EstimateID)
	assert.Equal(t, estimate.ID, *job.EstimateID)
	// 22:30 UTC on June 1 is already June 2 in Jerusalem.
	assert.True(t, time.Date(2026, 6, 2, 9, 0, 0, 0, loc).Equal(job.StartDateTime))
	assert.True(t, time.Date(2026, 6, 2, 17, 0, 0, 0, loc).Equal(job.EndDateTime))
	require.Len(t, job.Assignments, 1)
	assert.Equal(t, "Alice", job.Assignments[0].EmployeeName)
}

func TestJobService_CreateFromEstimateRequiresAccepted(t *testing.T) {
	f := newJobFixture(t, time.UTC)

	for _, status := range []model.EstimateStatus{model.EstimateStatusDraft, model.EstimateStatusSent, model.EstimateStatusDeclined} {
		estimate := f.estimates.add(model.Estimate{Number: "EST-1", Status: status, MovingDate: testClock})
		_, err := f.service.CreateFromEstimate(context.Background(), estimate.ID, nil)
		assert.ErrorIs(t, err, ErrConflict, "status %s", status)
	}

	invoiced := f.estimates.add(model.Estimate{Number: "EST-2", Status: model.EstimateStatusInvoiced, MovingDate: testClock, CustomerName: "X Y"})
	_, err := f.service.CreateFromEstimate(context.Background(), invoiced.ID, nil)
	assert.NoError(t, err)

	_, err = f.service.CreateFromEstimate(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, f.jobs.jobs, 1)
}

func TestJobService_UnknownEmployee(t *testing.T) {
	f := newJobFixture(t, time.UTC)

	_, err := f.service.Create(context.Background(), CreateJobInput{
		Title:         "Repaint",
		Address:       "1 Main St",
		StartDateTime: "2026-05-01T09:00:00Z",
		EndDateTime:   "2026-05-01T17:00:00Z",
		EmployeeIDs:   []uuid.UUID{f.alice.ID, uuid.New()},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.jobs.jobs)
}

func TestJobService_CreateValidation(t *testing.T) {
	f := newJobFixture(t, time.UTC)

	_, err := f.service.Create(context.Background(), CreateJobInput{
		Title:         "R",
		Address:       "1 Main St",
		StartDateTime: "2026-05-01T09:00:00Z",
		EndDateTime:   "2026-05-01T17:00:00Z",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.Create(context.Background(), CreateJobInput{
		Title:         "Repaint",
		Address:       "1 Main St",
		StartDateTime: "2026-05-01T17:00:00Z",
		EndDateTime:   "2026-05-01T09:00:00Z",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJobService_UpdateReplacesAssignments(t *testing.T) {
	f := newJobFixture(t, time.UTC)
	job, err := f.service.Create(context.Background(), CreateJobInput{
		Title:         "Repaint",
		Address:       "1 Main St",
		StartDateTime: "2026-05-01T09:00",
		EndDateTime:   "2026-05-01T17:00",
		EmployeeIDs:   []uuid.UUID{f.alice.ID},
	})
	require.NoError(t, err)

	title := "Repaint and trim"
	replacement := []uuid.UUID{f.bob.ID}
	updated, err := f.service.Update(context.Background(), job.ID, UpdateJobInput{Title: &title, EmployeeIDs: &replacement})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	require.Len(t, updated.Assignments, 1)
	assert.Equal(t, f.bob.ID, updated.Assignments[0].EmployeeID)

	address := "2 Main St"
	updated, err = f.service.Update(context.Background(), job.ID, UpdateJobInput{Address: &address})
	require.NoError(t, err)
	assert.Len(t, updated.Assignments, 1)

	empty := []uuid.UUID{}
	updated, err = f.service.Update(context.Background(), job.ID, UpdateJobInput{EmployeeIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Assignments)

	early := "2026-04-30T09:00:00Z"
	end := "2026-04-30T08:00:00Z"
	_, err = f.service.Update(context.Background(), job.ID, UpdateJobInput{StartDateTime: &early, EndDateTime: &end})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.Update(context.Background(), uuid.New(), UpdateJobInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobService_Assignments(t *testing.T) {
	f := newJobFixture(t, time.UTC)
	job, err := f.service.Create(context.Background(), CreateJobInput{
		Title:         "Repaint",
		Address:       "1 Main St",
		StartDateTime: "2026-05-01",
		EndDateTime:   "2026-05-01",
		EmployeeIDs:   []uuid.UUID{f.alice.ID},
	})
	require.NoError(t, err)

	updated, err := f.service.AddAssignments(context.Background(), job.ID, []uuid.UUID{f.alice.ID, f.bob.ID})
	require.NoError(t, err)
	require.Len(t, updated.Assignments, 2)

	_, err = f.service.AddAssignments(context.Background(), job.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, f.service.RemoveAssignment(context.Background(), job.ID, updated.Assignments[0].ID))
	assert.ErrorIs(t, f.service.RemoveAssignment(context.Background(), job.ID, uuid.New()), ErrNotFound)

	current, err := f.service.Get(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, current.Assignments, 1)
	assert.Equal(t, f.bob.ID, current.Assignments[0].EmployeeID)

	require.NoError(t, f.service.Delete(context.Background(), job.ID))
	assert.ErrorIs(t, f.service.Delete(context.Background(), job.ID), ErrNotFound)
}
