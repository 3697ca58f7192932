package repositories

import (
	"context"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// IngestionRepository exposes the row-level operations of the spreadsheet
// ingestion batch. The orchestrator owns exactly one transaction per batch:
// every row operation (audit inserts included) runs on that transaction, so
// a failed batch leaves no partial writes behind.
type IngestionRepository interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error

	FindIssuerByTickerTx(ctx context.Context, tx pgx.Tx, ticker string) (*domain.Issuer, error)
	InsertIssuerTx(ctx context.Context, tx pgx.Tx, issuer domain.Issuer) error

	FindEventByNaturalKeyTx(ctx context.Context, tx pgx.Tx, issuerID string, dividendNumber, fiscalYear int) (*domain.CorporateEvent, error)
	InsertEventTx(ctx context.Context, tx pgx.Tx, event domain.CorporateEvent) error

	FindRatingByEventTx(ctx context.Context, tx pgx.Tx, eventID string) (*domain.TaxRating, error)
	InsertRatingTx(ctx context.Context, tx pgx.Tx, rating domain.TaxRating) error
	UpdateRatingTx(ctx context.Context, tx pgx.Tx, rating domain.TaxRating) error

	FindDetailTx(ctx context.Context, tx pgx.Tx, ratingID, conceptID string) (*domain.FactorDetail, error)
	InsertDetailTx(ctx context.Context, tx pgx.Tx, detail domain.FactorDetail) error
	UpdateDetailTx(ctx context.Context, tx pgx.Tx, detail domain.FactorDetail) error

	InsertAuditRecordsTx(ctx context.Context, tx pgx.Tx, records []domain.AuditRecord) error
}
