package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/google/uuid"
)

// NewCreateRecord builds the audit record for an entity creation. Every
// snapshot field appears with a nil old value.
func NewCreateRecord(entity domain.Audited, userID, clientIP string) domain.AuditRecord {
	changes := make(map[string]domain.FieldChange)
	for field, value := range entity.AuditSnapshot() {
		v := value
		changes[field] = domain.FieldChange{Old: nil, New: &v}
	}
	return newRecord(domain.ActionCreate, entity.EntityType(), entity.EntityID(), userID, clientIP, changes)
}

// NewUpdateRecord builds the audit record for an entity update by diffing
// the before/after snapshots. The second return is false when nothing
// changed, in which case no record should be written.
func NewUpdateRecord(before, after domain.Audited, userID, clientIP string) (domain.AuditRecord, bool) {
	old := before.AuditSnapshot()
	changes := make(map[string]domain.FieldChange)
	for field, newValue := range after.AuditSnapshot() {
		oldValue := old[field]
		if oldValue == newValue {
			continue
		}
		o, n := oldValue, newValue
		changes[field] = domain.FieldChange{Old: &o, New: &n}
	}
	if len(changes) == 0 {
		return domain.AuditRecord{}, false
	}
	return newRecord(domain.ActionUpdate, after.EntityType(), after.EntityID(), userID, clientIP, changes), true
}

// NewDeleteRecord builds the audit record for an entity deletion. Every
// snapshot field appears with a nil new value.
func NewDeleteRecord(entity domain.Audited, userID, clientIP string) domain.AuditRecord {
	changes := make(map[string]domain.FieldChange)
	for field, value := range entity.AuditSnapshot() {
		v := value
		changes[field] = domain.FieldChange{Old: &v, New: nil}
	}
	return newRecord(domain.ActionDelete, entity.EntityType(), entity.EntityID(), userID, clientIP, changes)
}

func newRecord(action domain.AuditAction, entityType, entityID, userID, clientIP string, changes map[string]domain.FieldChange) domain.AuditRecord {
	payload, err := json.Marshal(changes)
	if err != nil {
		// map[string]FieldChange cannot fail to marshal
		payload = []byte("{}")
	}
	return domain.AuditRecord{
		AuditID:    uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  clientIP,
		Changes:    payload,
		Timestamp:  time.Now().UTC(),
	}
}

type auditService struct {
	auditRepo portsrepo.AuditRepository
}

// NewAuditService creates the audit-trail query facade.
func NewAuditService(auditRepo portsrepo.AuditRepository) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// ListAuditRecords returns a page of the trail, newest first.
func (s *auditService) ListAuditRecords(ctx context.Context, filter portsrepo.AuditFilter, limit int, nextToken string) ([]domain.AuditRecord, string, error) {
	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	return s.auditRepo.ListAuditRecords(ctx, filter, limit, nextToken)
}

// RecordLogin appends a login event to the trail.
func (s *auditService) RecordLogin(ctx context.Context, userID, clientIP string) error {
	record := newRecord(domain.ActionLogin, "user", userID, userID, clientIP, map[string]domain.FieldChange{})
	if err := s.auditRepo.SaveAuditRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to record login for user %s: %w", userID, err)
	}
	return nil
}
