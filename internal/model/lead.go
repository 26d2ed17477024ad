package model

import (
	"time"

	"github.com/google/uuid"
)

type LeadSource string

const (
	LeadSourceContact         LeadSource = "CONTACT"
	LeadSourceRequestEstimate LeadSource = "REQUEST_ESTIMATE"
)

type Lead struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Message    string     `json:"message"`
	Source     LeadSource `json:"source"`
	JobAddress *string    `json:"jobAddress,omitempty"`
	MovingDate *time.Time `json:"movingDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
