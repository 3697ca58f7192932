package domain

// CompanyType flags whether an issuer is a publicly traded (open) or closed corporation.
type CompanyType string

const (
	CompanyOpen   CompanyType = "A"
	CompanyClosed CompanyType = "C"
)

// Issuer is the issuing entity of a financial instrument. Identity fields
// (RUT, ticker) are immutable once the issuer exists.
type Issuer struct {
	IssuerID    string      `json:"issuerID"`  // Primary key (UUID)
	RUT         string      `json:"rut"`       // Chilean tax ID, unique
	LegalName   string      `json:"legalName"` // Razon social
	Ticker      string      `json:"ticker"`    // Exchange mnemonic (e.g. "COPEC"), unique
	CompanyType CompanyType `json:"companyType"`
	AuditFields
}

// EntityType implements Audited.
func (i Issuer) EntityType() string { return "issuer" }

// EntityID implements Audited.
func (i Issuer) EntityID() string { return i.IssuerID }

// AuditSnapshot implements Audited. Keys are the persisted column names,
// kept identical to the legacy schema so historical audit trails line up.
func (i Issuer) AuditSnapshot() map[string]string {
	return map[string]string{
		"rut":           i.RUT,
		"razon_social":  i.LegalName,
		"nemonico":      i.Ticker,
		"tipo_sociedad": string(i.CompanyType),
	}
}
