package repositories

// RepositoryProvider bundles all repository implementations for injection
// into the service container.
type RepositoryProvider struct {
	IssuerRepo    IssuerRepository
	EventRepo     EventRepository
	RatingRepo    RatingRepository
	ConceptRepo   ConceptRepository
	IngestionRepo IngestionRepository
	AuditRepo     AuditRepository
	UserRepo      UserRepository
}
