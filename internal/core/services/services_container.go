package services

import (
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
)

// NewServiceContainer wires every service facade onto the repository
// provider. The concept catalog cache is shared between the rating and
// ingestion services.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	catalog := NewConceptCatalog(repos.ConceptRepo)
	return &portssvc.ServiceContainer{
		Issuer:    NewIssuerService(repos.IssuerRepo),
		Event:     NewEventService(repos.EventRepo, repos.IssuerRepo),
		Rating:    NewRatingService(repos.RatingRepo, repos.IssuerRepo, catalog),
		Ingestion: NewIngestionService(repos.IngestionRepo, catalog),
		Audit:     NewAuditService(repos.AuditRepo),
		User:      NewUserService(repos.UserRepo),
	}
}
