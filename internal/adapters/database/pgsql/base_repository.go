package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/fintaxcl/tax_events_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const insertAuditQuery = `
	INSERT INTO audit_logs (audit_id, user_id, action, entity_type, entity_id, ip_address, changes, timestamp)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

// insertAuditRecordTx appends one audit record on the given transaction so
// it commits or rolls back together with the write it describes.
func insertAuditRecordTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	m := mapping.ToModelAuditRecord(record)
	_, err := tx.Exec(ctx, insertAuditQuery,
		m.AuditID,
		m.UserID,
		m.Action,
		m.EntityType,
		m.EntityID,
		m.IPAddress,
		m.Changes,
		m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record for %s %s: %w", m.EntityType, m.EntityID, err)
	}
	return nil
}
