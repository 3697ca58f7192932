package dto

import (
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// CreateRatingRequest defines the manual-entry form: the event attributes
// plus the rating attributes plus one dynamically keyed factor value per
// catalog concept (concept id -> decimal string). Blank factor values are
// ignored on creation.
type CreateRatingRequest struct {
	IssuerID         string            `json:"issuerID" binding:"required,uuid"`
	Market           string            `json:"market" binding:"omitempty,oneof=ACN CFI CFM"`
	PaymentDate      string            `json:"paymentDate" binding:"required,datetime=2006-01-02"`
	DividendNumber   int               `json:"dividendNumber" binding:"required,min=1"`
	FiscalYear       int               `json:"fiscalYear" binding:"required,min=2000"`
	UnitAmount       string            `json:"unitAmount" binding:"required"`
	TotalDistributed string            `json:"totalDistributed" binding:"omitempty"`
	Status           string            `json:"status" binding:"omitempty,oneof=BORRADOR EN_REVISION VALIDADO RECHAZADO"`
	Factors          map[string]string `json:"factors" binding:"omitempty"`
}

// UpdateRatingRequest defines the edit form. A factor key present with a
// blank value clears (deletes) that factor detail; an absent key also
// clears it, mirroring the legacy edit form which always posts the full
// factor set.
type UpdateRatingRequest struct {
	UnitAmount       string            `json:"unitAmount" binding:"required"`
	TotalDistributed string            `json:"totalDistributed" binding:"omitempty"`
	Status           string            `json:"status" binding:"omitempty,oneof=BORRADOR EN_REVISION VALIDADO RECHAZADO"`
	Factors          map[string]string `json:"factors" binding:"omitempty"`
}

// FactorDetailResponse is one factor value with its catalog concept.
type FactorDetailResponse struct {
	DetailID    string `json:"detailID"`
	ConceptID   string `json:"conceptID"`
	Column      int    `json:"column"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

// ConceptResponse is one catalog entry.
type ConceptResponse struct {
	ConceptID   string `json:"conceptID"`
	Column      int    `json:"column"`
	Description string `json:"description"`
	DataType    string `json:"dataType"`
}

// RatingResponse is the nested read model of a tax rating.
type RatingResponse struct {
	RatingID         string                 `json:"ratingID"`
	Event            EventResponse          `json:"event"`
	TotalDistributed string                 `json:"totalDistributed"`
	UnitAmount       string                 `json:"unitAmount"`
	Status           string                 `json:"status"`
	Details          []FactorDetailResponse `json:"details"`
	LastUpdatedAt    time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy    string                 `json:"lastUpdatedBy"`
}

// ToConceptResponse converts a domain.FactorConcept to ConceptResponse DTO
func ToConceptResponse(c *domain.FactorConcept) ConceptResponse {
	return ConceptResponse{
		ConceptID:   c.ConceptID,
		Column:      c.Column,
		Description: c.Description,
		DataType:    c.DataType,
	}
}

// ToListConceptResponse converts a slice of domain.FactorConcept to ConceptResponse DTOs
func ToListConceptResponse(concepts []domain.FactorConcept) []ConceptResponse {
	res := make([]ConceptResponse, len(concepts))
	for i := range concepts {
		res[i] = ToConceptResponse(&concepts[i])
	}
	return res
}

// ToRatingResponse converts a domain.RatingView to RatingResponse DTO
func ToRatingResponse(v *domain.RatingView) RatingResponse {
	event := ToEventResponse(&v.Event)
	issuer := ToIssuerResponse(&v.Issuer)
	event.Issuer = &issuer

	details := make([]FactorDetailResponse, len(v.Details))
	for i, d := range v.Details {
		details[i] = FactorDetailResponse{
			DetailID:  d.DetailID,
			ConceptID: d.ConceptID,
			Value:     d.Value.String(),
		}
		if d.Concept != nil {
			details[i].Column = d.Concept.Column
			details[i].Description = d.Concept.Description
		}
	}

	return RatingResponse{
		RatingID:         v.Rating.RatingID,
		Event:            event,
		TotalDistributed: v.Rating.TotalDistributed.String(),
		UnitAmount:       v.Rating.UnitAmount.String(),
		Status:           string(v.Rating.Status),
		Details:          details,
		LastUpdatedAt:    v.Rating.LastUpdatedAt,
		LastUpdatedBy:    v.Rating.LastUpdatedBy,
	}
}

// ToListRatingResponse converts a slice of domain.RatingView to RatingResponse DTOs
func ToListRatingResponse(views []domain.RatingView) []RatingResponse {
	res := make([]RatingResponse, len(views))
	for i := range views {
		res[i] = ToRatingResponse(&views[i])
	}
	return res
}
