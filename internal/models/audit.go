package models

import (
	"encoding/json"
	"time"
)

// AuditRecord row. Append-only; never updated or deleted by the application.
type AuditRecord struct {
	AuditID    string          `db:"audit_id"`
	UserID     *string         `db:"user_id"` // Nullable: unauthenticated writes
	Action     string          `db:"action"`
	EntityType string          `db:"entity_type"`
	EntityID   string          `db:"entity_id"`
	IPAddress  *string         `db:"ip_address"` // Nullable
	Changes    json.RawMessage `db:"changes"`
	Timestamp  time.Time       `db:"timestamp"`
}
