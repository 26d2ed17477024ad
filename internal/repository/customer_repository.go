package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/model"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// UpsertByEmail creates the customer or refreshes name and phone of the one
// already registered under the same email.
func (r *CustomerRepository) UpsertByEmail(ctx context.Context, customer model.Customer) (*model.Customer, error) {
	var saved model.Customer
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO customers (name, email, phone)
		VALUES (?, ?, ?)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			updated_at = NOW()
		RETURNING id, name, email, phone, created_at, updated_at
	`, customer.Name, customer.Email, customer.Phone).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
