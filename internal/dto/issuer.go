package dto

import (
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// CreateIssuerRequest defines the data needed to register an issuer manually.
type CreateIssuerRequest struct {
	RUT         string `json:"rut" binding:"required,rut"`
	LegalName   string `json:"legalName" binding:"required"`
	Ticker      string `json:"ticker" binding:"required,uppercase"`
	CompanyType string `json:"companyType" binding:"omitempty,oneof=A C"`
}

// IssuerResponse defines the data returned for an issuer.
type IssuerResponse struct {
	IssuerID    string `json:"issuerID"`
	RUT         string `json:"rut"`
	LegalName   string `json:"legalName"`
	Ticker      string `json:"ticker"`
	CompanyType string `json:"companyType"`
}

// ToIssuerResponse converts a domain.Issuer to IssuerResponse DTO
func ToIssuerResponse(i *domain.Issuer) IssuerResponse {
	return IssuerResponse{
		IssuerID:    i.IssuerID,
		RUT:         i.RUT,
		LegalName:   i.LegalName,
		Ticker:      i.Ticker,
		CompanyType: string(i.CompanyType),
	}
}

// ToListIssuerResponse converts a slice of domain.Issuer to IssuerResponse DTOs
func ToListIssuerResponse(issuers []domain.Issuer) []IssuerResponse {
	res := make([]IssuerResponse, len(issuers))
	for i := range issuers {
		res[i] = ToIssuerResponse(&issuers[i])
	}
	return res
}
