package domain

import (
	"github.com/shopspring/decimal"
)

// RatingStatus is the lifecycle state of a tax rating. Values match the
// legacy schema so existing data and audit trails remain comparable.
type RatingStatus string

const (
	StatusDraft     RatingStatus = "BORRADOR"
	StatusInReview  RatingStatus = "EN_REVISION"
	StatusValidated RatingStatus = "VALIDADO"
	StatusRejected  RatingStatus = "RECHAZADO"
)

// IsValid reports whether s is one of the known lifecycle states.
func (s RatingStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusValidated, StatusRejected:
		return true
	}
	return false
}

// TaxRating is the tax classification attached to one corporate event
// (one-to-one, keyed by EventID).
type TaxRating struct {
	RatingID         string          `json:"ratingID"` // Primary key (UUID)
	EventID          string          `json:"eventID"`
	TotalDistributed decimal.Decimal `json:"totalDistributed"` // 4 decimal places
	UnitAmount       decimal.Decimal `json:"unitAmount"`       // $/share, 6 decimal places
	Status           RatingStatus    `json:"status"`
	AuditFields
}

// EntityType implements Audited.
func (r TaxRating) EntityType() string { return "tax_rating" }

// EntityID implements Audited.
func (r TaxRating) EntityID() string { return r.RatingID }

// AuditSnapshot implements Audited.
func (r TaxRating) AuditSnapshot() map[string]string {
	return map[string]string{
		"evento_id":               r.EventID,
		"monto_total_distribuido": r.TotalDistributed.String(),
		"monto_unitario_pesos":    r.UnitAmount.String(),
		"estado":                  string(r.Status),
	}
}
