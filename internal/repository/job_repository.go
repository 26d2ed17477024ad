package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/db"
	"github.com/nurpe/finishing-touch/internal/model"
)

const jobSelect = `
	SELECT
		j.id,
		j.title,
		j.address,
		j.start_date_time,
		j.end_date_time,
		j.estimate_id,
		e.number AS estimate_number,
		j.created_at,
		j.updated_at
	FROM jobs j
	LEFT JOIN estimates e ON e.id = j.estimate_id
`

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job model.Job, employeeIDs []uuid.UUID) (*model.Job, error) {
	var jobID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO jobs (title, address, start_date_time, end_date_time, estimate_id)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`, job.Title, job.Address, job.StartDateTime, job.EndDateTime, job.EstimateID).Scan(&jobID).Error
		if err != nil {
			return err
		}
		return insertAssignments(tx, jobID, employeeIDs)
	})
	if err != nil {
		return nil, mapAssignmentError(err)
	}
	return r.Get(ctx, jobID)
}

func (r *JobRepository) List(ctx context.Context, filter model.JobFilter) ([]model.Job, error) {
	query := jobSelect
	var conditions []string
	var args []interface{}
	if filter.From != nil {
		conditions = append(conditions, "j.start_date_time >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "j.start_date_time <= ?")
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY j.start_date_time ASC"

	var jobs []model.Job
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&jobs).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
	}
	assignments, err := r.loadAssignments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		jobs[i].Assignments = nonNilAssignments(assignments[jobs[i].ID])
	}
	return jobs, nil
}

func (r *JobRepository) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).Raw(jobSelect+` WHERE j.id = ? LIMIT 1`, id).Scan(&job).Error; err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	assignments, err := r.loadAssignments(ctx, []uuid.UUID{job.ID})
	if err != nil {
		return nil, err
	}
	job.Assignments = nonNilAssignments(assignments[job.ID])
	return &job, nil
}

// Update applies the non-nil fields and, when EmployeeIDs is set, replaces
// the assignment set. Both happen in one transaction.
func (r *JobRepository) Update(ctx context.Context, id uuid.UUID, changes model.JobChanges) (*model.Job, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`
			UPDATE jobs
			SET
				title = COALESCE(?, title),
				address = COALESCE(?, address),
				start_date_time = COALESCE(?, start_date_time),
				end_date_time = COALESCE(?, end_date_time),
				estimate_id = COALESCE(?, estimate_id),
				updated_at = NOW()
			WHERE id = ?
		`, changes.Title, changes.Address, changes.StartDateTime, changes.EndDateTime, changes.EstimateID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if changes.EmployeeIDs == nil {
			return nil
		}
		if err := tx.Exec(`DELETE FROM job_assignments WHERE job_id = ?`, id).Error; err != nil {
			return err
		}
		return insertAssignments(tx, id, changes.EmployeeIDs)
	})
	if err != nil {
		return nil, mapAssignmentError(err)
	}
	return r.Get(ctx, id)
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM jobs WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *JobRepository) AddAssignments(ctx context.Context, jobID uuid.UUID, employeeIDs []uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertAssignments(tx, jobID, employeeIDs)
	})
	return mapAssignmentError(err)
}

func (r *JobRepository) RemoveAssignment(ctx context.Context, jobID, assignmentID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM job_assignments WHERE id = ? AND job_id = ?
	`, assignmentID, jobID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func insertAssignments(tx *gorm.DB, jobID uuid.UUID, employeeIDs []uuid.UUID) error {
	for _, employeeID := range employeeIDs {
		if err := tx.Exec(`
			INSERT INTO job_assignments (job_id, employee_id)
			VALUES (?, ?)
			ON CONFLICT ON CONSTRAINT uq_job_assignments_job_employee DO NOTHING
		`, jobID, employeeID).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *JobRepository) loadAssignments(ctx context.Context, jobIDs []uuid.UUID) (map[uuid.UUID][]model.JobAssignment, error) {
	result := make(map[uuid.UUID][]model.JobAssignment, len(jobIDs))
	if len(jobIDs) == 0 {
		return result, nil
	}

	var rows []model.JobAssignment
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			a.id,
			a.job_id,
			a.employee_id,
			emp.name AS employee_name,
			emp.role AS employee_role,
			a.created_at
		FROM job_assignments a
		JOIN employees emp ON emp.id = a.employee_id
		WHERE a.job_id IN ?
		ORDER BY a.created_at ASC, emp.name ASC
	`, jobIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.JobID] = append(result[row.JobID], row)
	}
	return result, nil
}

func mapAssignmentError(err error) error {
	if db.IsForeignKeyViolation(err, db.ConstraintAssignmentEmployee) {
		return ErrUnknownEmployee
	}
	return err
}

func nonNilAssignments(assignments []model.JobAssignment) []model.JobAssignment {
	if assignments == nil {
		return []model.JobAssignment{}
	}
	return assignments
}
