package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	gocache "github.com/patrickmn/go-cache"
)

const conceptCacheKey = "factor_concepts"

// ConceptCatalog is a read-through cache over the seeded factor-concept
// table. The catalog only changes at deployment time, so a generous TTL is
// safe; the cache avoids re-reading 30 rows on every ingested spreadsheet
// row and every rating render.
type ConceptCatalog struct {
	BaseService
	conceptRepo portsrepo.ConceptRepository
	cache       *gocache.Cache
}

func NewConceptCatalog(conceptRepo portsrepo.ConceptRepository) *ConceptCatalog {
	return &ConceptCatalog{
		conceptRepo: conceptRepo,
		cache:       gocache.New(1*time.Hour, 2*time.Hour),
	}
}

// All returns the catalog ordered by declaration column.
func (c *ConceptCatalog) All(ctx context.Context) ([]domain.FactorConcept, error) {
	if cached, found := c.cache.Get(conceptCacheKey); found {
		return cached.([]domain.FactorConcept), nil
	}

	concepts, err := c.conceptRepo.ListConcepts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load factor concept catalog: %w", err)
	}
	c.cache.Set(conceptCacheKey, concepts, gocache.DefaultExpiration)
	return concepts, nil
}

// ByID returns the catalog keyed by concept id.
func (c *ConceptCatalog) ByID(ctx context.Context) (map[string]domain.FactorConcept, error) {
	concepts, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.FactorConcept, len(concepts))
	for _, concept := range concepts {
		out[concept.ConceptID] = concept
	}
	return out, nil
}

// ByColumn returns the catalog keyed by declaration column number.
func (c *ConceptCatalog) ByColumn(ctx context.Context) (map[int]domain.FactorConcept, error) {
	concepts, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]domain.FactorConcept, len(concepts))
	for _, concept := range concepts {
		out[concept.Column] = concept
	}
	return out, nil
}
