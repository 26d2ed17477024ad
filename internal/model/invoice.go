package model

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusSent  InvoiceStatus = "SENT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
	InvoiceStatusVoid  InvoiceStatus = "VOID"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

type Invoice struct {
	ID                        uuid.UUID     `json:"id"`
	Number                    string        `json:"number"`
	Status                    InvoiceStatus `json:"status"`
	DerivedFromEstimateID     *uuid.UUID    `json:"derivedFromEstimateId,omitempty"`
	DerivedFromEstimateNumber *string       `json:"derivedFromEstimateNumber,omitempty"`
	CustomerName              string        `json:"customerName"`
	CustomerPhone             string        `json:"customerPhone"`
	CustomerEmail             string        `json:"customerEmail"`
	CustomerJobAddress        string        `json:"customerJobAddress"`
	CurrencySymbol            string        `json:"currencySymbol"`
	Subtotal                  int64         `json:"subtotal"`
	Tax                       int64         `json:"tax"`
	Total                     int64         `json:"total"`
	CreatedAt                 time.Time     `json:"createdAt"`
	UpdatedAt                 time.Time     `json:"updatedAt"`
	LineItems                 []LineItem    `json:"lineItems" gorm:"-"`
}

func (i *Invoice) SetCustomer(c CustomerSnapshot) {
	i.CustomerName = c.Name
	i.CustomerPhone = c.Phone
	i.CustomerEmail = c.Email
	i.CustomerJobAddress = c.JobAddress
}

type InvoiceFilter struct {
	Search string
	Status *InvoiceStatus
}
