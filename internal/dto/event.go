package dto

import (
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// CreateEventRequest defines the data needed to record a corporate event
// manually. Dates use the "2006-01-02" form.
type CreateEventRequest struct {
	IssuerID         string `json:"issuerID" binding:"required,uuid"`
	Market           string `json:"market" binding:"omitempty,oneof=ACN CFI CFM"`
	PaymentDate      string `json:"paymentDate" binding:"required,datetime=2006-01-02"`
	RegistrationDate string `json:"registrationDate" binding:"omitempty,datetime=2006-01-02"`
	DividendNumber   int    `json:"dividendNumber" binding:"required,min=1"`
	Sequence         int    `json:"sequence" binding:"omitempty,min=0"`
	FiscalYear       int    `json:"fiscalYear" binding:"required,min=2000"`
}

// EventResponse defines the data returned for a corporate event.
type EventResponse struct {
	EventID          string          `json:"eventID"`
	IssuerID         string          `json:"issuerID"`
	Issuer           *IssuerResponse `json:"issuer,omitempty"`
	Market           string          `json:"market"`
	PaymentDate      string          `json:"paymentDate"`
	RegistrationDate string          `json:"registrationDate,omitempty"`
	DividendNumber   int             `json:"dividendNumber"`
	Sequence         int             `json:"sequence"`
	FiscalYear       int             `json:"fiscalYear"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
}

// ToEventResponse converts a domain.CorporateEvent to EventResponse DTO
func ToEventResponse(e *domain.CorporateEvent) EventResponse {
	resp := EventResponse{
		EventID:        e.EventID,
		IssuerID:       e.IssuerID,
		Market:         string(e.Market),
		PaymentDate:    e.PaymentDate.Format("2006-01-02"),
		DividendNumber: e.DividendNumber,
		Sequence:       e.Sequence,
		FiscalYear:     e.FiscalYear,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
	if e.RegistrationDate != nil {
		resp.RegistrationDate = e.RegistrationDate.Format("2006-01-02")
	}
	return resp
}

// ToListEventResponse converts a slice of domain.CorporateEvent to EventResponse DTOs
func ToListEventResponse(events []domain.CorporateEvent) []EventResponse {
	res := make([]EventResponse, len(events))
	for i := range events {
		res[i] = ToEventResponse(&events[i])
	}
	return res
}
