package models

// Issuer row. Column names are inherited from the legacy schema.
type Issuer struct {
	IssuerID    string `db:"emisor_id"`
	RUT         string `db:"rut"`
	LegalName   string `db:"razon_social"`
	Ticker      string `db:"nemonico"`
	CompanyType string `db:"tipo_sociedad"` // 'A' open, 'C' closed
	AuditFields
}
