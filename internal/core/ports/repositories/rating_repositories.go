package repositories

import (
	"context"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// RatingFilter narrows rating listings. Zero values mean "no filter".
type RatingFilter struct {
	Ticker     string // Substring match on the issuer mnemonic
	FiscalYear int
	Market     string
}

// RatingRepository defines persistence for tax ratings and their factor
// details. Multi-entity writes are atomic: the audit records passed in ride
// the same transaction and disappear with it on rollback.
type RatingRepository interface {
	// CreateRatingWithEvent inserts a manually entered event, its rating
	// and factor details atomically.
	CreateRatingWithEvent(ctx context.Context, event domain.CorporateEvent, rating domain.TaxRating, details []domain.FactorDetail, audits []domain.AuditRecord) error
	FindRatingByID(ctx context.Context, ratingID string) (*domain.RatingView, error)
	ListRatings(ctx context.Context, filter RatingFilter) ([]domain.RatingView, error)
	// UpdateRatingWithFactors applies a rating edit: the rating row update,
	// factor detail upserts and deletions of cleared factors.
	UpdateRatingWithFactors(ctx context.Context, rating domain.TaxRating, upserts []domain.FactorDetail, deleteDetailIDs []string, audits []domain.AuditRecord) error
	// DeleteRating removes the rating and cascades its details.
	DeleteRating(ctx context.Context, ratingID string, audits []domain.AuditRecord) error
}

// ConceptRepository reads the factor-concept catalog (seeded, immutable).
type ConceptRepository interface {
	ListConcepts(ctx context.Context) ([]domain.FactorConcept, error)
}
