package repositories

import (
	"context"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// IssuerRepository defines persistence for issuers. Issuers are created
// through ingestion or manual registration; their identity fields are
// immutable afterwards.
type IssuerRepository interface {
	// SaveIssuer inserts the issuer and its audit record in one transaction.
	SaveIssuer(ctx context.Context, issuer domain.Issuer, audit domain.AuditRecord) error
	FindIssuerByID(ctx context.Context, issuerID string) (*domain.Issuer, error)
	FindIssuerByTicker(ctx context.Context, ticker string) (*domain.Issuer, error)
	ListIssuers(ctx context.Context) ([]domain.Issuer, error)
}
