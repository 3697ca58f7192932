package models

import "github.com/shopspring/decimal"

// TaxRating row, one-to-one with a corporate event.
type TaxRating struct {
	RatingID         string          `db:"calificacion_id"`
	EventID          string          `db:"evento_id"` // Unique
	TotalDistributed decimal.Decimal `db:"monto_total_distribuido"`
	UnitAmount       decimal.Decimal `db:"monto_unitario_pesos"`
	Status           string          `db:"estado"`
	AuditFields
}
