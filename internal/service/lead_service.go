package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/finishing-touch/internal/model"
)

type LeadStore interface {
	Create(ctx context.Context, lead model.Lead) (*model.Lead, error)
	List(ctx context.Context) ([]model.Lead, error)
}

type LeadService struct {
	leads LeadStore
	loc   *time.Location
	log   zerolog.Logger
}

type CreateLeadInput struct {
	Name       string           `json:"name" validate:"required,min=2"`
	Email      string           `json:"email" validate:"required,email"`
	Phone      string           `json:"phone" validate:"required,min=6"`
	Message    string           `json:"message" validate:"required,min=3"`
	Source     model.LeadSource `json:"source" validate:"omitempty,oneof=CONTACT REQUEST_ESTIMATE"`
	JobAddress *string          `json:"jobAddress"`
	MovingDate *string          `json:"movingDate"`
}

func NewLeadService(leads LeadStore, loc *time.Location, log zerolog.Logger) *LeadService {
	return &LeadService{leads: leads, loc: loc, log: log}
}

func (s *LeadService) Create(ctx context.Context, input CreateLeadInput) (*model.Lead, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	input.Message = strings.TrimSpace(input.Message)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Source == "" {
		input.Source = model.LeadSourceContact
	}
	movingDate, err := parseOptionalTimestamp("movingDate", input.MovingDate, s.loc)
	if err != nil {
		return nil, err
	}

	lead, err := s.leads.Create(ctx, model.Lead{
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Message:    input.Message,
		Source:     input.Source,
		JobAddress: input.JobAddress,
		MovingDate: movingDate,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("lead", lead.ID.String()).
		Str("source", string(lead.Source)).
		Str("email", lead.Email).
		Msg("new lead received")
	return lead, nil
}

func (s *LeadService) List(ctx context.Context) ([]model.Lead, error) {
	return s.leads.List(ctx)
}
