package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	"github.com/fintaxcl/tax_events_app/internal/models"
	"github.com/fintaxcl/tax_events_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxEventRepository struct {
	BaseRepository
}

// newPgxEventRepository creates a new repository for corporate event data.
func newPgxEventRepository(pool *pgxpool.Pool) portsrepo.EventRepository {
	return &PgxEventRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.EventRepository = (*PgxEventRepository)(nil)

const eventColumns = `evento_id, emisor_id, mercado, fecha_pago, fecha_registro, numero_dividendo, secuencia, ejercicio_comercial, created_at, created_by, last_updated_at, last_updated_by`

// SaveEvent inserts a new corporate event together with its audit record.
func (r *PgxEventRepository) SaveEvent(ctx context.Context, event domain.CorporateEvent, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEventTx(ctx, tx, event); err != nil {
		return err
	}
	if err := insertAuditRecordTx(ctx, tx, audit); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertEventTx(ctx context.Context, tx pgx.Tx, event domain.CorporateEvent) error {
	m := mapping.ToModelEvent(event)
	query := `
		INSERT INTO eventos_corporativos (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		m.EventID,
		m.IssuerID,
		m.Market,
		m.PaymentDate,
		m.RegistrationDate,
		m.DividendNumber,
		m.Sequence,
		m.FiscalYear,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert corporate event %s: %w", m.EventID, err)
	}
	return nil
}

func scanEvent(row pgx.Row) (models.CorporateEvent, error) {
	var m models.CorporateEvent
	err := row.Scan(
		&m.EventID,
		&m.IssuerID,
		&m.Market,
		&m.PaymentDate,
		&m.RegistrationDate,
		&m.DividendNumber,
		&m.Sequence,
		&m.FiscalYear,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindEventByID retrieves a corporate event by its id.
func (r *PgxEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.CorporateEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM eventos_corporativos WHERE evento_id = $1;`
	m, err := scanEvent(r.Pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event by id %s: %w", eventID, err)
	}
	d := mapping.ToDomainEvent(m)
	return &d, nil
}

// FindEventByNaturalKey resolves an event by its (issuer, dividend number,
// fiscal year) uniqueness tuple.
func (r *PgxEventRepository) FindEventByNaturalKey(ctx context.Context, issuerID string, dividendNumber, fiscalYear int) (*domain.CorporateEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM eventos_corporativos
		WHERE emisor_id = $1 AND numero_dividendo = $2 AND ejercicio_comercial = $3;
	`
	m, err := scanEvent(r.Pool.QueryRow(ctx, query, issuerID, dividendNumber, fiscalYear))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event by natural key (%s, %d, %d): %w", issuerID, dividendNumber, fiscalYear, err)
	}
	d := mapping.ToDomainEvent(m)
	return &d, nil
}

// ListEvents retrieves all corporate events, newest payment date first.
func (r *PgxEventRepository) ListEvents(ctx context.Context) ([]domain.CorporateEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM eventos_corporativos ORDER BY fecha_pago DESC;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CorporateEvent, error) {
		return scanEvent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan events: %w", err)
	}

	return mapping.ToDomainEventSlice(ms), nil
}
