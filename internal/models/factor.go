package models

import "github.com/shopspring/decimal"

// FactorConcept row: one DJ 1949 declaration column (8-37).
type FactorConcept struct {
	ConceptID   string `db:"concepto_id"`
	Column      int    `db:"columna_dj"` // Unique
	Description string `db:"descripcion"`
	DataType    string `db:"tipo_dato"`
}

// FactorDetail row. (calificacion_id, concepto_id) is unique.
type FactorDetail struct {
	DetailID  string          `db:"detalle_id"`
	RatingID  string          `db:"calificacion_id"`
	ConceptID string          `db:"concepto_id"`
	Value     decimal.Decimal `db:"valor"`
	AuditFields
}
