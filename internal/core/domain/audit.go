package domain

import (
	"encoding/json"
	"time"
)

// AuditAction is the kind of write an audit record describes.
type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
	ActionLogin  AuditAction = "LOGIN"
)

// Audited is implemented by every entity type whose writes are recorded in
// the audit trail. The registered set is deliberately explicit: new entity
// types are not audited until they implement this and their write sites call
// the recorder.
type Audited interface {
	EntityType() string
	EntityID() string
	// AuditSnapshot returns the persisted field values keyed by column name,
	// rendered as strings.
	AuditSnapshot() map[string]string
}

// FieldChange is the old/new value pair for one changed field. Old is nil
// for creations.
type FieldChange struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}

// AuditRecord is one append-only entry in the audit trail. It references the
// affected entity polymorphically by type and id, and carries the change
// payload as JSON.
type AuditRecord struct {
	AuditID    string          `json:"auditID"` // Primary key (UUID)
	UserID     string          `json:"userID"`  // Empty when no authenticated actor
	Username   string          `json:"username,omitempty"`
	Action     AuditAction     `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityID"`
	IPAddress  string          `json:"ipAddress,omitempty"`
	Changes    json.RawMessage `json:"changes"`
	Timestamp  time.Time       `json:"timestamp"`
}
