package mapping

import (
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/fintaxcl/tax_events_app/internal/models"
)

// ToModelRating converts a domain TaxRating to a model TaxRating
func ToModelRating(d domain.TaxRating) models.TaxRating {
	return models.TaxRating{
		RatingID:         d.RatingID,
		EventID:          d.EventID,
		TotalDistributed: d.TotalDistributed,
		UnitAmount:       d.UnitAmount,
		Status:           string(d.Status),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRating converts a model TaxRating to a domain TaxRating
func ToDomainRating(m models.TaxRating) domain.TaxRating {
	return domain.TaxRating{
		RatingID:         m.RatingID,
		EventID:          m.EventID,
		TotalDistributed: m.TotalDistributed,
		UnitAmount:       m.UnitAmount,
		Status:           domain.RatingStatus(m.Status),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
