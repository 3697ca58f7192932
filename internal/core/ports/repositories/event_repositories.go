package repositories

import (
	"context"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// EventRepository defines persistence for corporate events.
type EventRepository interface {
	// SaveEvent inserts the event and its audit record in one transaction.
	SaveEvent(ctx context.Context, event domain.CorporateEvent, audit domain.AuditRecord) error
	FindEventByID(ctx context.Context, eventID string) (*domain.CorporateEvent, error)
	// FindEventByNaturalKey resolves the (issuer, dividend number, fiscal
	// year) uniqueness tuple.
	FindEventByNaturalKey(ctx context.Context, issuerID string, dividendNumber, fiscalYear int) (*domain.CorporateEvent, error)
	ListEvents(ctx context.Context) ([]domain.CorporateEvent, error)
}
