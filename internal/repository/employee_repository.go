package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/model"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee model.Employee) (*model.Employee, error) {
	var saved model.Employee
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO employees (name, phone, role, user_id)
		VALUES (?, ?, ?, ?)
		RETURNING id, name, phone, role, user_id, created_at, updated_at
	`, employee.Name, employee.Phone, employee.Role, employee.UserID).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, role, user_id, created_at, updated_at
		FROM employees
		ORDER BY name ASC
	`).Scan(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *EmployeeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, role, user_id, created_at, updated_at
		FROM employees
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&employee).Error
	if err != nil {
		return nil, err
	}
	if employee.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &employee, nil
}

// Update overwrites name, phone and role; nil arguments keep the stored value.
func (r *EmployeeRepository) Update(ctx context.Context, id uuid.UUID, name, phone *string, role *model.Role) (*model.Employee, error) {
	var saved model.Employee
	err := r.db.WithContext(ctx).Raw(`
		UPDATE employees
		SET
			name = COALESCE(?, name),
			phone = COALESCE(?, phone),
			role = COALESCE(?, role),
			updated_at = NOW()
		WHERE id = ?
		RETURNING id, name, phone, role, user_id, created_at, updated_at
	`, name, phone, role, id).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	if saved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM employees WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MissingIDs returns the ids that have no employee row.
func (r *EmployeeRepository) MissingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	if err := r.db.WithContext(ctx).Raw(`SELECT id FROM employees WHERE id IN ?`, ids).Scan(&found).Error; err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
