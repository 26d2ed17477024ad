package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/db"
	"github.com/nurpe/finishing-touch/internal/model"
)

const timeEntrySelect = `
	SELECT
		t.id,
		t.employee_id,
		emp.name AS employee_name,
		t.clock_in,
		t.clock_out,
		t.duration_minutes,
		t.created_at,
		t.updated_at
	FROM time_entries t
	JOIN employees emp ON emp.id = t.employee_id
`

type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry model.TimeEntry) (*model.TimeEntry, error) {
	var id uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO time_entries (employee_id, clock_in, clock_out, duration_minutes)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, entry.EmployeeID, entry.ClockIn, entry.ClockOut, entry.DurationMinutes).Scan(&id).Error
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, db.ConstraintOpenTimeEntry):
			return nil, ErrOpenTimeEntry
		case db.IsForeignKeyViolation(err, db.ConstraintTimeEntryEmployee):
			return nil, ErrUnknownEmployee
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *TimeEntryRepository) Get(ctx context.Context, id uuid.UUID) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).Raw(timeEntrySelect+` WHERE t.id = ? LIMIT 1`, id).Scan(&entry).Error; err != nil {
		return nil, err
	}
	if entry.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &entry, nil
}

// FindOpen returns the most recent entry without a clock-out for the employee.
func (r *TimeEntryRepository) FindOpen(ctx context.Context, employeeID uuid.UUID) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	err := r.db.WithContext(ctx).Raw(timeEntrySelect+`
		WHERE t.employee_id = ? AND t.clock_out IS NULL
		ORDER BY t.clock_in DESC
		LIMIT 1
	`, employeeID).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &entry, nil
}

func (r *TimeEntryRepository) Close(ctx context.Context, id uuid.UUID, clockOut time.Time, durationMinutes int64) (*model.TimeEntry, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE time_entries
		SET clock_out = ?, duration_minutes = ?, updated_at = NOW()
		WHERE id = ?
	`, clockOut, durationMinutes, id)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, id)
}

func (r *TimeEntryRepository) List(ctx context.Context, filter model.TimeEntryFilter) ([]model.TimeEntry, error) {
	query := timeEntrySelect
	var conditions []string
	var args []interface{}
	if filter.EmployeeID != nil {
		conditions = append(conditions, "t.employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.From != nil {
		conditions = append(conditions, "t.clock_in >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "t.clock_in <= ?")
		args = append(args, *filter.To)
	}
	if filter.OpenOnly {
		conditions = append(conditions, "t.clock_out IS NULL")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.clock_in DESC"

	var entries []model.TimeEntry
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
