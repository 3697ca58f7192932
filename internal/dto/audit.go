package dto

import (
	"encoding/json"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// AuditRecordResponse is one entry of the audit trail listing.
type AuditRecordResponse struct {
	AuditID    string          `json:"auditID"`
	UserID     string          `json:"userID,omitempty"`
	Username   string          `json:"username,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityID"`
	IPAddress  string          `json:"ipAddress,omitempty"`
	Changes    json.RawMessage `json:"changes"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ListAuditRecordsResponse is a page of the audit trail.
type ListAuditRecordsResponse struct {
	Records   []AuditRecordResponse `json:"records"`
	NextToken string                `json:"nextToken,omitempty"`
}

// ToAuditRecordResponse converts a domain.AuditRecord to AuditRecordResponse DTO
func ToAuditRecordResponse(rec *domain.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		AuditID:    rec.AuditID,
		UserID:     rec.UserID,
		Username:   rec.Username,
		Action:     string(rec.Action),
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		IPAddress:  rec.IPAddress,
		Changes:    rec.Changes,
		Timestamp:  rec.Timestamp,
	}
}

// ToListAuditRecordsResponse builds a page response from domain records.
func ToListAuditRecordsResponse(records []domain.AuditRecord, nextToken string) ListAuditRecordsResponse {
	res := make([]AuditRecordResponse, len(records))
	for i := range records {
		res[i] = ToAuditRecordResponse(&records[i])
	}
	return ListAuditRecordsResponse{Records: res, NextToken: nextToken}
}
