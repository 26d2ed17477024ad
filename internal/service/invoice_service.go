package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/config"
	"github.com/nurpe/finishing-touch/internal/metrics"
	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/numbering"
	"github.com/nurpe/finishing-touch/internal/repository"
)

type InvoiceStore interface {
	LatestNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, invoice model.Invoice) (*model.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	GetByEstimate(ctx context.Context, estimateID uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter model.InvoiceFilter) ([]model.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvoiceStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type EstimateReader interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
}

type InvoiceService struct {
	invoices  InvoiceStore
	estimates EstimateReader
	documents DocumentRenderer
	currency  string
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

type CreateInvoiceInput struct {
	DerivedEstimateID *uuid.UUID             `json:"derivedEstimateId"`
	Customer          model.CustomerSnapshot `json:"customer"`
	LineItems         []model.LineItem       `json:"lineItems" validate:"dive"`
	Subtotal          int64                  `json:"subtotal" validate:"min=0"`
	Tax               int64                  `json:"tax" validate:"min=0"`
	Total             int64                  `json:"total" validate:"min=0"`
	CurrencySymbol    string                 `json:"currencySymbol"`
}

func NewInvoiceService(
	invoices InvoiceStore,
	estimates EstimateReader,
	documents DocumentRenderer,
	cfg *config.Config,
	m *metrics.Metrics,
	log zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		estimates: estimates,
		documents: documents,
		currency:  cfg.App.CurrencySymbol,
		metrics:   m,
		log:       log,
	}
}

// Create stores a caller-priced invoice. Totals are taken as given.
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*model.Invoice, error) {
	input.Customer = normalizeCustomer(input.Customer)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	invoice := model.Invoice{
		Status:         model.InvoiceStatusDraft,
		CurrencySymbol: input.CurrencySymbol,
		Subtotal:       input.Subtotal,
		Tax:            input.Tax,
		Total:          input.Total,
		LineItems:      copyLines(input.LineItems),
	}
	if invoice.CurrencySymbol == "" {
		invoice.CurrencySymbol = s.currency
	}
	invoice.SetCustomer(input.Customer)

	source := metrics.InvoiceSourceDirect
	if input.DerivedEstimateID != nil {
		estimate, err := s.estimates.Get(ctx, *input.DerivedEstimateID)
		if err != nil {
			return nil, notFound(err, "estimate")
		}
		_, err = s.invoices.GetByEstimate(ctx, estimate.ID)
		if err == nil {
			return nil, fmt.Errorf("%w: estimate %s already has an invoice", ErrConflict, estimate.Number)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		invoice.DerivedFromEstimateID = &estimate.ID
		invoice.DerivedFromEstimateNumber = &estimate.Number
		source = metrics.InvoiceSourceEstimate
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		last, err := s.invoices.LatestNumber(ctx)
		if err != nil {
			return nil, err
		}
		invoice.Number = numbering.Next(numbering.InvoicePrefix, last)

		saved, err := s.invoices.Create(ctx, invoice)
		switch {
		case errors.Is(err, repository.ErrDuplicateNumber):
			s.log.Warn().Str("number", invoice.Number).Msg("invoice number taken, retrying")
			continue
		case errors.Is(err, repository.ErrAlreadyInvoiced):
			return nil, fmt.Errorf("%w: estimate already has an invoice", ErrConflict)
		case errors.Is(err, repository.ErrUnknownEstimate):
			return nil, fmt.Errorf("%w: estimate", ErrNotFound)
		case err != nil:
			return nil, err
		}
		s.metrics.InvoiceCreated(source)
		return saved, nil
	}
	return nil, fmt.Errorf("%w: invoice number already in use, retry the request", ErrConflict)
}

func (s *InvoiceService) List(ctx context.Context, filter model.InvoiceFilter) ([]model.Invoice, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown invoice status %q", ErrInvalidInput, *filter.Status)
	}
	return s.invoices.List(ctx, filter)
}

func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice")
	}
	return invoice, nil
}

// UpdateStatus overwrites the status; no ordering between statuses is enforced.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status *model.InvoiceStatus) (*model.Invoice, error) {
	if status != nil {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown invoice status %q", ErrInvalidInput, *status)
		}
		if err := s.invoices.UpdateStatus(ctx, id, *status); err != nil {
			return nil, notFound(err, "invoice")
		}
	}
	return s.Get(ctx, id)
}

func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.invoices.Delete(ctx, id); err != nil {
		return notFound(err, "invoice")
	}
	return nil
}

func (s *InvoiceService) PDF(ctx context.Context, id uuid.UUID) (*Document, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.documents.InvoicePDF(*invoice)
	if err != nil {
		return nil, err
	}
	return &Document{FileName: invoice.Number + ".pdf", Content: content}, nil
}
