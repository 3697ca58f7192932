package mapping

import (
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/fintaxcl/tax_events_app/internal/models"
)

// ToDomainConcept converts a model FactorConcept to a domain FactorConcept
func ToDomainConcept(m models.FactorConcept) domain.FactorConcept {
	return domain.FactorConcept{
		ConceptID:   m.ConceptID,
		Column:      m.Column,
		Description: m.Description,
		DataType:    m.DataType,
	}
}

// ToDomainConceptSlice converts a slice of model FactorConcepts to domain FactorConcepts
func ToDomainConceptSlice(ms []models.FactorConcept) []domain.FactorConcept {
	ds := make([]domain.FactorConcept, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainConcept(m)
	}
	return ds
}

// ToModelDetail converts a domain FactorDetail to a model FactorDetail
func ToModelDetail(d domain.FactorDetail) models.FactorDetail {
	return models.FactorDetail{
		DetailID:    d.DetailID,
		RatingID:    d.RatingID,
		ConceptID:   d.ConceptID,
		Value:       d.Value,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDetail converts a model FactorDetail to a domain FactorDetail
func ToDomainDetail(m models.FactorDetail) domain.FactorDetail {
	return domain.FactorDetail{
		DetailID:    m.DetailID,
		RatingID:    m.RatingID,
		ConceptID:   m.ConceptID,
		Value:       m.Value,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
