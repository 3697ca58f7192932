package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/google/uuid"
)

type eventService struct {
	BaseService
	eventRepo  portsrepo.EventRepository
	issuerRepo portsrepo.IssuerRepository
}

// NewEventService creates the corporate-event facade.
func NewEventService(eventRepo portsrepo.EventRepository, issuerRepo portsrepo.IssuerRepository) portssvc.EventSvcFacade {
	return &eventService{eventRepo: eventRepo, issuerRepo: issuerRepo}
}

var _ portssvc.EventSvcFacade = (*eventService)(nil)

func (s *eventService) CreateEvent(ctx context.Context, req dto.CreateEventRequest, creatorUserID, clientIP string) (*domain.CorporateEvent, error) {
	// DTO binding already guarantees the date format.
	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid payment date", apperrors.ErrValidation)
	}
	var registrationDate *time.Time
	if req.RegistrationDate != "" {
		rd, err := time.Parse("2006-01-02", req.RegistrationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid registration date", apperrors.ErrValidation)
		}
		registrationDate = &rd
	}

	if _, err := s.issuerRepo.FindIssuerByID(ctx, req.IssuerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: issuer %s does not exist", apperrors.ErrValidation, req.IssuerID)
		}
		return nil, err
	}

	// Pre-check the natural key for a friendlier message; the unique
	// constraint still backstops concurrent submissions.
	existing, err := s.eventRepo.FindEventByNaturalKey(ctx, req.IssuerID, req.DividendNumber, req.FiscalYear)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: dividend %d of fiscal year %d already exists for this issuer", apperrors.ErrDuplicate, req.DividendNumber, req.FiscalYear)
	}

	market := domain.MarketType(req.Market)
	if market == "" {
		market = domain.MarketShares
	}

	now := time.Now()
	event := domain.CorporateEvent{
		EventID:          uuid.NewString(),
		IssuerID:         req.IssuerID,
		Market:           market,
		PaymentDate:      paymentDate,
		RegistrationDate: registrationDate,
		DividendNumber:   req.DividendNumber,
		Sequence:         req.Sequence,
		FiscalYear:       req.FiscalYear,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	audit := NewCreateRecord(event, creatorUserID, clientIP)
	if err := s.eventRepo.SaveEvent(ctx, event, audit); err != nil {
		s.LogError(ctx, err, "Failed to create corporate event", "issuer_id", req.IssuerID)
		return nil, fmt.Errorf("failed to create corporate event: %w", err)
	}

	s.LogInfo(ctx, "Corporate event created", "event_id", event.EventID)
	return &event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.CorporateEvent, error) {
	return s.eventRepo.FindEventByID(ctx, eventID)
}

func (s *eventService) ListEvents(ctx context.Context) ([]domain.CorporateEvent, error) {
	events, err := s.eventRepo.ListEvents(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list corporate events")
		return nil, fmt.Errorf("failed to list corporate events: %w", err)
	}
	return events, nil
}
