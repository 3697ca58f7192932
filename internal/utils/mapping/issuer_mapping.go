package mapping

import (
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/fintaxcl/tax_events_app/internal/models"
)

// ToModelIssuer converts a domain Issuer to a model Issuer
func ToModelIssuer(d domain.Issuer) models.Issuer {
	return models.Issuer{
		IssuerID:    d.IssuerID,
		RUT:         d.RUT,
		LegalName:   d.LegalName,
		Ticker:      d.Ticker,
		CompanyType: string(d.CompanyType),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainIssuer converts a model Issuer to a domain Issuer
func ToDomainIssuer(m models.Issuer) domain.Issuer {
	return domain.Issuer{
		IssuerID:    m.IssuerID,
		RUT:         m.RUT,
		LegalName:   m.LegalName,
		Ticker:      m.Ticker,
		CompanyType: domain.CompanyType(m.CompanyType),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainIssuerSlice converts a slice of model Issuers to domain Issuers
func ToDomainIssuerSlice(ms []models.Issuer) []domain.Issuer {
	ds := make([]domain.Issuer, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainIssuer(m)
	}
	return ds
}
