package pgsql

import (
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres repository onto one shared
// connection pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		IssuerRepo:    newPgxIssuerRepository(pool),
		EventRepo:     newPgxEventRepository(pool),
		RatingRepo:    newPgxRatingRepository(pool),
		ConceptRepo:   newPgxConceptRepository(pool),
		IngestionRepo: newPgxIngestionRepository(pool),
		AuditRepo:     newPgxAuditRepository(pool),
		UserRepo:      newPgxUserRepository(pool),
	}
}
