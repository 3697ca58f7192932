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

type PgxIssuerRepository struct {
	BaseRepository
}

// newPgxIssuerRepository creates a new repository for issuer data.
func newPgxIssuerRepository(pool *pgxpool.Pool) portsrepo.IssuerRepository {
	return &PgxIssuerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.IssuerRepository = (*PgxIssuerRepository)(nil)

const issuerColumns = `emisor_id, rut, razon_social, nemonico, tipo_sociedad, created_at, created_by, last_updated_at, last_updated_by`

// SaveIssuer inserts a new issuer together with its audit record.
func (r *PgxIssuerRepository) SaveIssuer(ctx context.Context, issuer domain.Issuer, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertIssuerTx(ctx, tx, issuer); err != nil {
		return err
	}
	if err := insertAuditRecordTx(ctx, tx, audit); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertIssuerTx(ctx context.Context, tx pgx.Tx, issuer domain.Issuer) error {
	m := mapping.ToModelIssuer(issuer)
	query := `
		INSERT INTO emisores (` + issuerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.IssuerID,
		m.RUT,
		m.LegalName,
		m.Ticker,
		m.CompanyType,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert issuer %s: %w", m.Ticker, err)
	}
	return nil
}

func scanIssuer(row pgx.Row) (models.Issuer, error) {
	var m models.Issuer
	err := row.Scan(
		&m.IssuerID,
		&m.RUT,
		&m.LegalName,
		&m.Ticker,
		&m.CompanyType,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindIssuerByID retrieves an issuer by its id.
func (r *PgxIssuerRepository) FindIssuerByID(ctx context.Context, issuerID string) (*domain.Issuer, error) {
	query := `SELECT ` + issuerColumns + ` FROM emisores WHERE emisor_id = $1;`
	m, err := scanIssuer(r.Pool.QueryRow(ctx, query, issuerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find issuer by id %s: %w", issuerID, err)
	}
	d := mapping.ToDomainIssuer(m)
	return &d, nil
}

// FindIssuerByTicker retrieves an issuer by its exchange mnemonic.
func (r *PgxIssuerRepository) FindIssuerByTicker(ctx context.Context, ticker string) (*domain.Issuer, error) {
	query := `SELECT ` + issuerColumns + ` FROM emisores WHERE nemonico = $1;`
	m, err := scanIssuer(r.Pool.QueryRow(ctx, query, ticker))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find issuer by ticker %s: %w", ticker, err)
	}
	d := mapping.ToDomainIssuer(m)
	return &d, nil
}

// ListIssuers retrieves all issuers ordered by ticker.
func (r *PgxIssuerRepository) ListIssuers(ctx context.Context) ([]domain.Issuer, error) {
	query := `SELECT ` + issuerColumns + ` FROM emisores ORDER BY nemonico;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query issuers: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Issuer, error) {
		return scanIssuer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan issuers: %w", err)
	}

	return mapping.ToDomainIssuerSlice(ms), nil
}
