package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/model"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	var saved model.Lead
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO leads (name, email, phone, message, source, job_address, moving_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, name, email, phone, message, source, job_address, moving_date, created_at
	`, lead.Name, lead.Email, lead.Phone, lead.Message, lead.Source, lead.JobAddress, lead.MovingDate).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *LeadRepository) List(ctx context.Context) ([]model.Lead, error) {
	var leads []model.Lead
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, email, phone, message, source, job_address, moving_date, created_at
		FROM leads
		ORDER BY created_at DESC
	`).Scan(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}
