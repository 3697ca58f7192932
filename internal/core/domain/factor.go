package domain

import (
	"github.com/shopspring/decimal"
)

// FactorConcept is a catalog entry for one DJ 1949 declaration-form column
// (8-37). Seeded once at deployment; effectively immutable reference data.
type FactorConcept struct {
	ConceptID   string `json:"conceptID"` // Primary key (UUID)
	Column      int    `json:"column"`    // Declaration column number, unique
	Description string `json:"description"`
	DataType    string `json:"dataType"`
}

// FactorDetail holds one factor value attached to a tax rating.
// (RatingID, ConceptID) is unique; it is the normalized replacement for the
// 30 repeated spreadsheet columns.
type FactorDetail struct {
	DetailID  string          `json:"detailID"` // Primary key (UUID)
	RatingID  string          `json:"ratingID"`
	ConceptID string          `json:"conceptID"`
	Value     decimal.Decimal `json:"value"` // 8 decimal places
	AuditFields

	// Concept is populated on nested reads; zero-valued otherwise.
	Concept *FactorConcept `json:"concept,omitempty"`
}

// EntityType implements Audited.
func (d FactorDetail) EntityType() string { return "factor_detail" }

// EntityID implements Audited.
func (d FactorDetail) EntityID() string { return d.DetailID }

// AuditSnapshot implements Audited.
func (d FactorDetail) AuditSnapshot() map[string]string {
	return map[string]string{
		"calificacion_id": d.RatingID,
		"concepto_id":     d.ConceptID,
		"valor":           d.Value.String(),
	}
}
