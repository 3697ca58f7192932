package domain

import (
	"strconv"
	"time"
)

// MarketType is the market segment a corporate event belongs to.
type MarketType string

const (
	MarketShares              MarketType = "ACN" // Acciones
	MarketInvestmentFundUnits MarketType = "CFI" // Cuotas de fondos de inversion
	MarketMutualFundUnits     MarketType = "CFM" // Cuotas de fondos mutuos
)

// CorporateEvent is one dividend/distribution payment event of an issuer.
// (IssuerID, DividendNumber, FiscalYear) is the natural key used for
// idempotent upsert during spreadsheet ingestion.
type CorporateEvent struct {
	EventID          string     `json:"eventID"` // Primary key (UUID)
	IssuerID         string     `json:"issuerID"`
	Market           MarketType `json:"market"`
	PaymentDate      time.Time  `json:"paymentDate"`
	RegistrationDate *time.Time `json:"registrationDate,omitempty"`
	DividendNumber   int        `json:"dividendNumber"` // Per-issuer sequence as declared by the issuer
	Sequence         int        `json:"sequence"`       // File sequence identifier
	FiscalYear       int        `json:"fiscalYear"`
	AuditFields
}

// EntityType implements Audited.
func (e CorporateEvent) EntityType() string { return "corporate_event" }

// EntityID implements Audited.
func (e CorporateEvent) EntityID() string { return e.EventID }

// AuditSnapshot implements Audited.
func (e CorporateEvent) AuditSnapshot() map[string]string {
	registration := ""
	if e.RegistrationDate != nil {
		registration = e.RegistrationDate.Format(dateFormat)
	}
	return map[string]string{
		"emisor_id":           e.IssuerID,
		"mercado":             string(e.Market),
		"fecha_pago":          e.PaymentDate.Format(dateFormat),
		"fecha_registro":      registration,
		"numero_dividendo":    strconv.Itoa(e.DividendNumber),
		"secuencia":           strconv.Itoa(e.Sequence),
		"ejercicio_comercial": strconv.Itoa(e.FiscalYear),
	}
}
