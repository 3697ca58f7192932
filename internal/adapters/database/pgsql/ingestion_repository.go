package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	"github.com/fintaxcl/tax_events_app/internal/models"
	"github.com/fintaxcl/tax_events_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxIngestionRepository runs the row-level operations of a spreadsheet batch
// on the transaction the orchestrator opened. It deliberately splits find,
// insert and update so the orchestrator can compute audit diffs against the
// stored state before writing.
type PgxIngestionRepository struct {
	BaseRepository
}

func newPgxIngestionRepository(pool *pgxpool.Pool) portsrepo.IngestionRepository {
	return &PgxIngestionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.IngestionRepository = (*PgxIngestionRepository)(nil)

func (r *PgxIngestionRepository) FindIssuerByTickerTx(ctx context.Context, tx pgx.Tx, ticker string) (*domain.Issuer, error) {
	query := `SELECT ` + issuerColumns + ` FROM emisores WHERE nemonico = $1;`
	m, err := scanIssuer(tx.QueryRow(ctx, query, ticker))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find issuer by ticker %s: %w", ticker, err)
	}
	d := mapping.ToDomainIssuer(m)
	return &d, nil
}

func (r *PgxIngestionRepository) InsertIssuerTx(ctx context.Context, tx pgx.Tx, issuer domain.Issuer) error {
	return insertIssuerTx(ctx, tx, issuer)
}

func (r *PgxIngestionRepository) FindEventByNaturalKeyTx(ctx context.Context, tx pgx.Tx, issuerID string, dividendNumber, fiscalYear int) (*domain.CorporateEvent, error) {
	query := `
		SELECT ` + eventColumns + ` FROM eventos_corporativos
		WHERE emisor_id = $1 AND numero_dividendo = $2 AND ejercicio_comercial = $3;
	`
	m, err := scanEvent(tx.QueryRow(ctx, query, issuerID, dividendNumber, fiscalYear))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find event by natural key: %w", err)
	}
	d := mapping.ToDomainEvent(m)
	return &d, nil
}

func (r *PgxIngestionRepository) InsertEventTx(ctx context.Context, tx pgx.Tx, event domain.CorporateEvent) error {
	return insertEventTx(ctx, tx, event)
}

func (r *PgxIngestionRepository) FindRatingByEventTx(ctx context.Context, tx pgx.Tx, eventID string) (*domain.TaxRating, error) {
	query := `SELECT ` + ratingColumns + ` FROM calificaciones_tributarias WHERE evento_id = $1;`
	var m models.TaxRating
	err := tx.QueryRow(ctx, query, eventID).Scan(
		&m.RatingID, &m.EventID, &m.TotalDistributed, &m.UnitAmount, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find rating for event %s: %w", eventID, err)
	}
	d := mapping.ToDomainRating(m)
	return &d, nil
}

func (r *PgxIngestionRepository) InsertRatingTx(ctx context.Context, tx pgx.Tx, rating domain.TaxRating) error {
	return insertRatingTx(ctx, tx, rating)
}

func (r *PgxIngestionRepository) UpdateRatingTx(ctx context.Context, tx pgx.Tx, rating domain.TaxRating) error {
	return updateRatingTx(ctx, tx, rating)
}

func (r *PgxIngestionRepository) FindDetailTx(ctx context.Context, tx pgx.Tx, ratingID, conceptID string) (*domain.FactorDetail, error) {
	query := `
		SELECT detalle_id, calificacion_id, concepto_id, valor, created_at, created_by, last_updated_at, last_updated_by
		FROM detalles_factor
		WHERE calificacion_id = $1 AND concepto_id = $2;
	`
	var m models.FactorDetail
	err := tx.QueryRow(ctx, query, ratingID, conceptID).Scan(
		&m.DetailID, &m.RatingID, &m.ConceptID, &m.Value,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find factor detail: %w", err)
	}
	d := mapping.ToDomainDetail(m)
	return &d, nil
}

func (r *PgxIngestionRepository) InsertDetailTx(ctx context.Context, tx pgx.Tx, detail domain.FactorDetail) error {
	return insertDetailTx(ctx, tx, detail)
}

func (r *PgxIngestionRepository) UpdateDetailTx(ctx context.Context, tx pgx.Tx, detail domain.FactorDetail) error {
	return updateDetailTx(ctx, tx, detail)
}

func (r *PgxIngestionRepository) InsertAuditRecordsTx(ctx context.Context, tx pgx.Tx, records []domain.AuditRecord) error {
	for _, rec := range records {
		if err := insertAuditRecordTx(ctx, tx, rec); err != nil {
			return err
		}
	}
	return nil
}
