package mapping

import (
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/fintaxcl/tax_events_app/internal/models"
)

// ToModelEvent converts a domain CorporateEvent to a model CorporateEvent
func ToModelEvent(d domain.CorporateEvent) models.CorporateEvent {
	return models.CorporateEvent{
		EventID:          d.EventID,
		IssuerID:         d.IssuerID,
		Market:           string(d.Market),
		PaymentDate:      d.PaymentDate,
		RegistrationDate: d.RegistrationDate,
		DividendNumber:   d.DividendNumber,
		Sequence:         d.Sequence,
		FiscalYear:       d.FiscalYear,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEvent converts a model CorporateEvent to a domain CorporateEvent
func ToDomainEvent(m models.CorporateEvent) domain.CorporateEvent {
	return domain.CorporateEvent{
		EventID:          m.EventID,
		IssuerID:         m.IssuerID,
		Market:           domain.MarketType(m.Market),
		PaymentDate:      m.PaymentDate,
		RegistrationDate: m.RegistrationDate,
		DividendNumber:   m.DividendNumber,
		Sequence:         m.Sequence,
		FiscalYear:       m.FiscalYear,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEventSlice converts a slice of model CorporateEvents to domain CorporateEvents
func ToDomainEventSlice(ms []models.CorporateEvent) []domain.CorporateEvent {
	ds := make([]domain.CorporateEvent, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEvent(m)
	}
	return ds
}
