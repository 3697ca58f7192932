package repositories

import (
	"context"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// AuditFilter narrows audit-trail listings. Zero values mean "no filter".
type AuditFilter struct {
	Username string // Substring match on the actor's username
	Action   domain.AuditAction
	From     *time.Time
	To       *time.Time
}

// AuditRepository persists and queries the append-only audit trail.
type AuditRepository interface {
	SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error
	// ListAuditRecords returns a timestamp-descending page plus the token
	// for the next page ("" when exhausted).
	ListAuditRecords(ctx context.Context, filter AuditFilter, limit int, nextToken string) ([]domain.AuditRecord, string, error)
}
