package models

import "time"

// CorporateEvent row. (emisor_id, numero_dividendo, ejercicio_comercial) is
// unique, the natural key for ingestion upserts.
type CorporateEvent struct {
	EventID          string     `db:"evento_id"`
	IssuerID         string     `db:"emisor_id"`
	Market           string     `db:"mercado"`
	PaymentDate      time.Time  `db:"fecha_pago"`
	RegistrationDate *time.Time `db:"fecha_registro"` // Nullable
	DividendNumber   int        `db:"numero_dividendo"`
	Sequence         int        `db:"secuencia"`
	FiscalYear       int        `db:"ejercicio_comercial"`
	AuditFields
}
