package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "DRAFT"
	EstimateStatusSent     EstimateStatus = "SENT"
	EstimateStatusAccepted EstimateStatus = "ACCEPTED"
	EstimateStatusDeclined EstimateStatus = "DECLINED"
	EstimateStatusInvoiced EstimateStatus = "INVOICED"
)

func (s EstimateStatus) Valid() bool {
	switch s {
	case EstimateStatusDraft, EstimateStatusSent, EstimateStatusAccepted, EstimateStatusDeclined, EstimateStatusInvoiced:
		return true
	}
	return false
}

// CustomerSnapshot is copied onto estimates and invoices at creation time.
type CustomerSnapshot struct {
	Name       string `json:"name" validate:"required,min=2"`
	JobAddress string `json:"jobAddress" validate:"required,min=3"`
	Phone      string `json:"phone" validate:"required,min=6"`
	Email      string `json:"email" validate:"required,email"`
}

type LineItem struct {
	ID          uuid.UUID         `json:"id"`
	DocumentID  uuid.UUID         `json:"-"`
	Key         *string           `json:"key,omitempty"`
	Description string            `json:"description" validate:"required,min=1"`
	Qty         int64             `json:"qty" validate:"min=0"`
	UnitPrice   int64             `json:"unitPrice" validate:"min=0"`
	TotalPrice  int64             `json:"totalPrice" validate:"min=0"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	SortOrder   int               `json:"-"`
}

type Estimate struct {
	ID                 uuid.UUID      `json:"id"`
	Number             string         `json:"number"`
	Status             EstimateStatus `json:"status"`
	MovingDate         time.Time      `json:"movingDate"`
	CustomerID         *uuid.UUID     `json:"customerId,omitempty"`
	CustomerName       string         `json:"customerName"`
	CustomerPhone      string         `json:"customerPhone"`
	CustomerEmail      string         `json:"customerEmail"`
	CustomerJobAddress string         `json:"customerJobAddress"`
	CurrencySymbol     string         `json:"currencySymbol"`
	Subtotal           int64          `json:"subtotal"`
	Tax                int64          `json:"tax"`
	Total              int64          `json:"total"`
	Notes              *string        `json:"notes,omitempty"`
	InvoiceID          *uuid.UUID     `json:"invoiceId,omitempty"`
	InvoiceNumber      *string        `json:"invoiceNumber,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	LineItems          []LineItem     `json:"lineItems" gorm:"-"`
}

func (e Estimate) Customer() CustomerSnapshot {
	return CustomerSnapshot{
		Name:       e.CustomerName,
		JobAddress: e.CustomerJobAddress,
		Phone:      e.CustomerPhone,
		Email:      e.CustomerEmail,
	}
}

type EstimateFilter struct {
	Search string
	Status *EstimateStatus
}
