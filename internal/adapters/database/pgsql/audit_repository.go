package pgsql

import (
	"context"
	"fmt"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	"github.com/fintaxcl/tax_events_app/internal/models"
	"github.com/fintaxcl/tax_events_app/internal/utils/mapping"
	"github.com/fintaxcl/tax_events_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the audit trail.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// SaveAuditRecord appends one record outside any entity transaction. Used
// for login events, which have no accompanying entity write.
func (r *PgxAuditRepository) SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	m := mapping.ToModelAuditRecord(record)
	_, err := r.Pool.Exec(ctx, insertAuditQuery,
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
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// ListAuditRecords returns a timestamp-descending page of the trail with the
// actor's username resolved, plus the token for the next page. Ties on
// timestamp break on audit_id so the keyset cursor is stable.
func (r *PgxAuditRepository) ListAuditRecords(ctx context.Context, filter portsrepo.AuditFilter, limit int, nextToken string) ([]domain.AuditRecord, string, error) {
	where := `TRUE`
	args := []any{}
	if filter.Username != "" {
		args = append(args, "%"+filter.Username+"%")
		where += fmt.Sprintf(` AND u.username ILIKE $%d`, len(args))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		where += fmt.Sprintf(` AND a.action = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(` AND a.timestamp >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(` AND a.timestamp <= $%d`, len(args))
	}
	if nextToken != "" {
		ts, id, err := pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", err
		}
		args = append(args, ts, id)
		where += fmt.Sprintf(` AND (a.timestamp, a.audit_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query := fmt.Sprintf(`
		SELECT a.audit_id, a.user_id, a.action, a.entity_type, a.entity_id, a.ip_address, a.changes, a.timestamp,
			COALESCE(u.username, '')
		FROM audit_logs a
		LEFT JOIN users u ON u.user_id = a.user_id
		WHERE %s
		ORDER BY a.timestamp DESC, a.audit_id DESC
		LIMIT $%d;
	`, where, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var m models.AuditRecord
		var username string
		err := rows.Scan(
			&m.AuditID, &m.UserID, &m.Action, &m.EntityType, &m.EntityID,
			&m.IPAddress, &m.Changes, &m.Timestamp, &username,
		)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan audit record: %w", err)
		}
		d := mapping.ToDomainAuditRecord(m)
		d.Username = username
		records = append(records, d)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to read audit records: %w", err)
	}

	token := ""
	if len(records) > limit {
		records = records[:limit]
		last := records[limit-1]
		token = pagination.EncodeToken(last.Timestamp, last.AuditID)
	}
	if records == nil {
		records = []domain.AuditRecord{}
	}
	return records, token, nil
}
