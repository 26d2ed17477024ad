package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/finishing-touch/internal/model"
)

type EmployeeStore interface {
	Create(ctx context.Context, employee model.Employee) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	Update(ctx context.Context, id uuid.UUID, name, phone *string, role *model.Role) (*model.Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MissingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type EmployeeService struct {
	employees EmployeeStore
}

type CreateEmployeeInput struct {
	Name   string     `json:"name" validate:"required,min=2"`
	Phone  string     `json:"phone" validate:"required,min=6"`
	Role   model.Role `json:"role" validate:"required,oneof=ADMIN MANAGER EMPLOYEE"`
	UserID *uuid.UUID `json:"userId"`
}

type UpdateEmployeeInput struct {
	Name  *string     `json:"name" validate:"omitempty,min=2"`
	Phone *string     `json:"phone" validate:"omitempty,min=6"`
	Role  *model.Role `json:"role" validate:"omitempty,oneof=ADMIN MANAGER EMPLOYEE"`
}

func NewEmployeeService(employees EmployeeStore) *EmployeeService {
	return &EmployeeService{employees: employees}
}

func (s *EmployeeService) Create(ctx context.Context, input CreateEmployeeInput) (*model.Employee, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	return s.employees.Create(ctx, model.Employee{
		Name:   input.Name,
		Phone:  input.Phone,
		Role:   input.Role,
		UserID: input.UserID,
	})
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	return s.employees.List(ctx)
}

func (s *EmployeeService) Get(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	employee, err := s.employees.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee")
	}
	return employee, nil
}

func (s *EmployeeService) Update(ctx context.Context, id uuid.UUID, input UpdateEmployeeInput) (*model.Employee, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	employee, err := s.employees.Update(ctx, id, input.Name, input.Phone, input.Role)
	if err != nil {
		return nil, notFound(err, "employee")
	}
	return employee, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		return notFound(err, "employee")
	}
	return nil
}
