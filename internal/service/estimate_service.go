package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nurpe/finishing-touch/internal/config"
	"github.com/nurpe/finishing-touch/internal/metrics"
	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/numbering"
	"github.com/nurpe/finishing-touch/internal/pricing"
	"github.com/nurpe/finishing-touch/internal/repository"
)

// numberAttempts bounds how often a create is retried after losing the race
// for a document number.
const numberAttempts = 2

type EstimateStore interface {
	LatestNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, estimate model.Estimate) (*model.Estimate, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	List(ctx context.Context, filter model.EstimateFilter) ([]model.Estimate, error)
	Update(ctx context.Context, id uuid.UUID, status *model.EstimateStatus, notes *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ConvertToInvoice(ctx context.Context, estimateID uuid.UUID, invoice model.Invoice) (*model.Invoice, error)
}

type CustomerStore interface {
	UpsertByEmail(ctx context.Context, customer model.Customer) (*model.Customer, error)
}

type DocumentRenderer interface {
	EstimatePDF(estimate model.Estimate) ([]byte, error)
	InvoicePDF(invoice model.Invoice) ([]byte, error)
}

type EstimateService struct {
	estimates EstimateStore
	customers CustomerStore
	invoices  InvoiceStore
	documents DocumentRenderer
	rates     pricing.RateCard
	currency  string
	loc       *time.Location
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

type CreateEstimateInput struct {
	Customer   model.CustomerSnapshot `json:"customer"`
	MovingDate string                 `json:"movingDate" validate:"required"`
	Rooms      pricing.RoomsInput     `json:"rooms"`
	Tax        int64                  `json:"tax" validate:"min=0"`
	Notes      *string                `json:"notes"`
}

type UpdateEstimateInput struct {
	Status *model.EstimateStatus `json:"status"`
	Notes  *string               `json:"notes"`
}

type Document struct {
	FileName string
	Content  []byte
}

func NewEstimateService(
	estimates EstimateStore,
	customers CustomerStore,
	invoices InvoiceStore,
	documents DocumentRenderer,
	cfg *config.Config,
	m *metrics.Metrics,
	log zerolog.Logger,
) *EstimateService {
	return &EstimateService{
		estimates: estimates,
		customers: customers,
		invoices:  invoices,
		documents: documents,
		rates:     cfg.Rates,
		currency:  cfg.App.CurrencySymbol,
		loc:       cfg.Location(),
		metrics:   m,
		log:       log,
	}
}

func (s *EstimateService) Create(ctx context.Context, input CreateEstimateInput) (*model.Estimate, error) {
	input.Customer = normalizeCustomer(input.Customer)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	movingDate, err := parseTimestamp("movingDate", input.MovingDate, s.loc)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.UpsertByEmail(ctx, model.Customer{
		Name:  input.Customer.Name,
		Email: input.Customer.Email,
		Phone: input.Customer.Phone,
	})
	if err != nil {
		return nil, err
	}

	summary := s.rates.Calculate(input.Rooms, input.Tax)
	estimate := model.Estimate{
		Status:             model.EstimateStatusDraft,
		MovingDate:         movingDate,
		CustomerID:         &customer.ID,
		CustomerName:       input.Customer.Name,
		CustomerPhone:      input.Customer.Phone,
		CustomerEmail:      input.Customer.Email,
		CustomerJobAddress: input.Customer.JobAddress,
		CurrencySymbol:     s.currency,
		Subtotal:           summary.Subtotal,
		Tax:                summary.Tax,
		Total:              summary.Total,
		Notes:              input.Notes,
		LineItems:          pricedLines(summary.LineItems),
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		last, err := s.estimates.LatestNumber(ctx)
		if err != nil {
			return nil, err
		}
		estimate.Number = numbering.Next(numbering.EstimatePrefix, last)

		saved, err := s.estimates.Create(ctx, estimate)
		if errors.Is(err, repository.ErrDuplicateNumber) {
			s.log.Warn().Str("number", estimate.Number).Msg("estimate number taken, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		s.metrics.EstimateCreated()
		return saved, nil
	}
	return nil, fmt.Errorf("%w: estimate number already in use, retry the request", ErrConflict)
}

func (s *EstimateService) List(ctx context.Context, filter model.EstimateFilter) ([]model.Estimate, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown estimate status %q", ErrInvalidInput, *filter.Status)
	}
	return s.estimates.List(ctx, filter)
}

func (s *EstimateService) Get(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	estimate, err := s.estimates.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "estimate")
	}
	return estimate, nil
}

// Update overwrites status and notes. Any status may replace any other; only
// conversion enforces a rule.
func (s *EstimateService) Update(ctx context.Context, id uuid.UUID, input UpdateEstimateInput) (*model.Estimate, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown estimate status %q", ErrInvalidInput, *input.Status)
	}
	if input.Status != nil || input.Notes != nil {
		if err := s.estimates.Update(ctx, id, input.Status, input.Notes); err != nil {
			return nil, notFound(err, "estimate")
		}
	}
	return s.Get(ctx, id)
}

func (s *EstimateService) UpdateStatus(ctx context.Context, id uuid.UUID, status *model.EstimateStatus) (*model.Estimate, error) {
	return s.Update(ctx, id, UpdateEstimateInput{Status: status})
}

func (s *EstimateService) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) (*model.Estimate, error) {
	return s.Update(ctx, id, UpdateEstimateInput{Notes: notes})
}

func (s *EstimateService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.estimates.Delete(ctx, id); err != nil {
		return notFound(err, "estimate")
	}
	return nil
}

// Send records a delivery notice. The status is left as is.
func (s *EstimateService) Send(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	estimate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("estimate", estimate.Number).
		Str("to", estimate.CustomerEmail).
		Int64("total", estimate.Total).
		Msg("estimate sent")
	return estimate, nil
}

func (s *EstimateService) PDF(ctx context.Context, id uuid.UUID) (*Document, error) {
	estimate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.documents.EstimatePDF(*estimate)
	if err != nil {
		return nil, err
	}
	return &Document{FileName: estimate.Number + ".pdf", Content: content}, nil
}

// ConvertToInvoice copies the estimate into a new invoice and marks the
// estimate INVOICED. A second call returns the invoice created by the first;
// the bool reports whether a new invoice was written.
func (s *EstimateService) ConvertToInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, bool, error) {
	estimate, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if estimate.Status == model.EstimateStatusDeclined {
		return nil, false, fmt.Errorf("%w: declined estimate %s cannot be invoiced", ErrConflict, estimate.Number)
	}

	existing, err := s.invoices.GetByEstimate(ctx, id)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	invoice := invoiceFromEstimate(*estimate)
	for attempt := 0; attempt < numberAttempts; attempt++ {
		last, err := s.invoices.LatestNumber(ctx)
		if err != nil {
			return nil, false, err
		}
		invoice.Number = numbering.Next(numbering.InvoicePrefix, last)

		saved, err := s.estimates.ConvertToInvoice(ctx, id, invoice)
		switch {
		case errors.Is(err, repository.ErrDuplicateNumber):
			s.log.Warn().Str("number", invoice.Number).Msg("invoice number taken, retrying")
			continue
		case errors.Is(err, repository.ErrEstimateDeclined):
			return nil, false, fmt.Errorf("%w: declined estimate %s cannot be invoiced", ErrConflict, estimate.Number)
		case errors.Is(err, repository.ErrAlreadyInvoiced):
			existing, err := s.invoices.GetByEstimate(ctx, id)
			if err != nil {
				return nil, false, notFound(err, "invoice")
			}
			return existing, false, nil
		case err != nil:
			return nil, false, notFound(err, "estimate")
		}

		s.metrics.InvoiceCreated(metrics.InvoiceSourceEstimate)
		s.log.Info().Str("estimate", estimate.Number).Str("invoice", saved.Number).Msg("estimate converted")
		return saved, true, nil
	}
	return nil, false, fmt.Errorf("%w: invoice number already in use, retry the request", ErrConflict)
}

func invoiceFromEstimate(estimate model.Estimate) model.Invoice {
	estimateID := estimate.ID
	estimateNumber := estimate.Number
	invoice := model.Invoice{
		Status:                    model.InvoiceStatusDraft,
		DerivedFromEstimateID:     &estimateID,
		DerivedFromEstimateNumber: &estimateNumber,
		CurrencySymbol:            estimate.CurrencySymbol,
		Subtotal:                  estimate.Subtotal,
		Tax:                       estimate.Tax,
		Total:                     estimate.Total,
		LineItems:                 copyLines(estimate.LineItems),
	}
	invoice.SetCustomer(estimate.Customer())
	return invoice
}

func copyLines(lines []model.LineItem) []model.LineItem {
	copied := make([]model.LineItem, len(lines))
	for i, line := range lines {
		item := model.LineItem{
			Description: line.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.TotalPrice,
			SortOrder:   i,
		}
		if line.Key != nil {
			key := *line.Key
			item.Key = &key
		}
		if line.Metadata != nil {
			item.Metadata = make(datatypes.JSONMap, len(line.Metadata))
			for k, v := range line.Metadata {
				item.Metadata[k] = v
			}
		}
		copied[i] = item
	}
	return copied
}

func pricedLines(items []pricing.LineItem) []model.LineItem {
	lines := make([]model.LineItem, len(items))
	for i, item := range items {
		key := string(item.Key)
		lines[i] = model.LineItem{
			Key:         &key,
			Description: item.Description,
			Qty:         item.Qty,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
			SortOrder:   i,
		}
		if item.Metadata != nil {
			lines[i].Metadata = datatypes.JSONMap(item.Metadata)
		}
	}
	return lines
}

func normalizeCustomer(c model.CustomerSnapshot) model.CustomerSnapshot {
	return model.CustomerSnapshot{
		Name:       strings.TrimSpace(c.Name),
		JobAddress: strings.TrimSpace(c.JobAddress),
		Phone:      strings.TrimSpace(c.Phone),
		Email:      strings.ToLower(strings.TrimSpace(c.Email)),
	}
}
