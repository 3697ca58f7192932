package mapping

import (
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/fintaxcl/tax_events_app/internal/models"
)

// ToModelAuditRecord converts a domain AuditRecord to a model AuditRecord
func ToModelAuditRecord(d domain.AuditRecord) models.AuditRecord {
	var userID *string
	if d.UserID != "" {
		userID = &d.UserID
	}
	var ip *string
	if d.IPAddress != "" {
		ip = &d.IPAddress
	}
	return models.AuditRecord{
		AuditID:    d.AuditID,
		UserID:     userID,
		Action:     string(d.Action),
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		IPAddress:  ip,
		Changes:    d.Changes,
		Timestamp:  d.Timestamp,
	}
}

// ToDomainAuditRecord converts a model AuditRecord to a domain AuditRecord
func ToDomainAuditRecord(m models.AuditRecord) domain.AuditRecord {
	rec := domain.AuditRecord{
		AuditID:    m.AuditID,
		Action:     domain.AuditAction(m.Action),
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Changes:    m.Changes,
		Timestamp:  m.Timestamp,
	}
	if m.UserID != nil {
		rec.UserID = *m.UserID
	}
	if m.IPAddress != nil {
		rec.IPAddress = *m.IPAddress
	}
	return rec
}
