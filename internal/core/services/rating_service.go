package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/fintaxcl/tax_events_app/internal/utils/factors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ratingService struct {
	BaseService
	ratingRepo portsrepo.RatingRepository
	issuerRepo portsrepo.IssuerRepository
	catalog    *ConceptCatalog
}

// NewRatingService creates the tax-rating maintenance facade.
func NewRatingService(ratingRepo portsrepo.RatingRepository, issuerRepo portsrepo.IssuerRepository, catalog *ConceptCatalog) portssvc.RatingSvcFacade {
	return &ratingService{ratingRepo: ratingRepo, issuerRepo: issuerRepo, catalog: catalog}
}

var _ portssvc.RatingSvcFacade = (*ratingService)(nil)

// parseAmount parses a decimal form value, tolerating a comma decimal
// separator as legacy spreadsheets use.
func parseAmount(field, raw string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s no es un valor decimal valido (%q)", apperrors.ErrValidation, field, raw)
	}
	return d, nil
}

// parsedFactor is one submitted factor value resolved against the catalog.
type parsedFactor struct {
	concept domain.FactorConcept
	value   decimal.Decimal
}

// parseFactors resolves the dynamically keyed factor map against the
// catalog. Blank values are dropped; unknown concept ids are a validation
// error.
func (s *ratingService) parseFactors(ctx context.Context, raw map[string]string) ([]parsedFactor, error) {
	byID, err := s.catalog.ByID(ctx)
	if err != nil {
		return nil, err
	}

	var parsed []parsedFactor
	for conceptID, value := range raw {
		if strings.TrimSpace(value) == "" {
			continue
		}
		concept, ok := byID[conceptID]
		if !ok {
			return nil, fmt.Errorf("%w: concepto de factor desconocido %q", apperrors.ErrValidation, conceptID)
		}
		d, err := parseAmount(fmt.Sprintf("factor columna %d", concept.Column), value)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, parsedFactor{concept: concept, value: d})
	}
	return parsed, nil
}

// validateFactorRules applies the credit-sum and sign rules to a full
// factor set.
func validateFactorRules(parsed []parsedFactor, unitAmount decimal.Decimal) error {
	values := make(map[int]decimal.Decimal, len(parsed))
	for _, p := range parsed {
		values[p.concept.Column] = p.value
	}
	if violations := factors.Validate(values, unitAmount); len(violations) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(violations, "; "))
	}
	return nil
}

func (s *ratingService) CreateRating(ctx context.Context, req dto.CreateRatingRequest, userID, clientIP string) (*domain.RatingView, error) {
	unitAmount, err := parseAmount("monto unitario", req.UnitAmount)
	if err != nil {
		return nil, err
	}
	totalDistributed := decimal.Zero
	if req.TotalDistributed != "" {
		totalDistributed, err = parseAmount("monto total distribuido", req.TotalDistributed)
		if err != nil {
			return nil, err
		}
	}

	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha de pago invalida", apperrors.ErrValidation)
	}

	if _, err := s.issuerRepo.FindIssuerByID(ctx, req.IssuerID); err != nil {
		return nil, fmt.Errorf("%w: emisor %s no existe", apperrors.ErrValidation, req.IssuerID)
	}

	parsed, err := s.parseFactors(ctx, req.Factors)
	if err != nil {
		return nil, err
	}
	if err := validateFactorRules(parsed, unitAmount); err != nil {
		return nil, err
	}

	status := domain.RatingStatus(req.Status)
	if status == "" {
		status = domain.StatusDraft
	}
	market := domain.MarketType(req.Market)
	if market == "" {
		market = domain.MarketShares
	}

	now := time.Now()
	auditFields := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	event := domain.CorporateEvent{
		EventID:        uuid.NewString(),
		IssuerID:       req.IssuerID,
		Market:         market,
		PaymentDate:    paymentDate,
		DividendNumber: req.DividendNumber,
		FiscalYear:     req.FiscalYear,
		AuditFields:    auditFields,
	}
	rating := domain.TaxRating{
		RatingID:         uuid.NewString(),
		EventID:          event.EventID,
		TotalDistributed: totalDistributed,
		UnitAmount:       unitAmount,
		Status:           status,
		AuditFields:      auditFields,
	}

	details := make([]domain.FactorDetail, 0, len(parsed))
	audits := []domain.AuditRecord{
		NewCreateRecord(event, userID, clientIP),
		NewCreateRecord(rating, userID, clientIP),
	}
	for _, p := range parsed {
		detail := domain.FactorDetail{
			DetailID:    uuid.NewString(),
			RatingID:    rating.RatingID,
			ConceptID:   p.concept.ConceptID,
			Value:       p.value,
			AuditFields: auditFields,
		}
		details = append(details, detail)
		audits = append(audits, NewCreateRecord(detail, userID, clientIP))
	}

	if err := s.ratingRepo.CreateRatingWithEvent(ctx, event, rating, details, audits); err != nil {
		s.LogError(ctx, err, "Failed to create rating", "issuer_id", req.IssuerID)
		return nil, err
	}

	s.LogInfo(ctx, "Rating created", "rating_id", rating.RatingID, "event_id", event.EventID)
	return s.ratingRepo.FindRatingByID(ctx, rating.RatingID)
}

func (s *ratingService) GetRatingByID(ctx context.Context, ratingID string) (*domain.RatingView, error) {
	return s.ratingRepo.FindRatingByID(ctx, ratingID)
}

func (s *ratingService) ListRatings(ctx context.Context, filter portsrepo.RatingFilter) ([]domain.RatingView, error) {
	views, err := s.ratingRepo.ListRatings(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ratings")
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return views, nil
}

// UpdateRating applies the edit form. The form always posts the full factor
// set: a concept absent from the map, or present with a blank value, clears
// that factor.
func (s *ratingService) UpdateRating(ctx context.Context, ratingID string, req dto.UpdateRatingRequest, userID, clientIP string) (*domain.RatingView, error) {
	view, err := s.ratingRepo.FindRatingByID(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	before := view.Rating

	unitAmount, err := parseAmount("monto unitario", req.UnitAmount)
	if err != nil {
		return nil, err
	}
	totalDistributed := before.TotalDistributed
	if req.TotalDistributed != "" {
		totalDistributed, err = parseAmount("monto total distribuido", req.TotalDistributed)
		if err != nil {
			return nil, err
		}
	}

	parsed, err := s.parseFactors(ctx, req.Factors)
	if err != nil {
		return nil, err
	}
	if err := validateFactorRules(parsed, unitAmount); err != nil {
		return nil, err
	}

	status := before.Status
	if req.Status != "" {
		status = domain.RatingStatus(req.Status)
	}

	now := time.Now()
	after := before
	after.TotalDistributed = totalDistributed
	after.UnitAmount = unitAmount
	after.Status = status
	after.LastUpdatedAt = now
	after.LastUpdatedBy = userID

	existingByConcept := make(map[string]domain.FactorDetail, len(view.Details))
	for _, d := range view.Details {
		existingByConcept[d.ConceptID] = d
	}

	var audits []domain.AuditRecord
	if record, changed := NewUpdateRecord(before, after, userID, clientIP); changed {
		audits = append(audits, record)
	}

	var upserts []domain.FactorDetail
	submitted := make(map[string]bool, len(parsed))
	for _, p := range parsed {
		submitted[p.concept.ConceptID] = true
		if existing, ok := existingByConcept[p.concept.ConceptID]; ok {
			if existing.Value.Equal(p.value) {
				continue
			}
			updated := existing
			updated.Value = p.value
			updated.Concept = nil
			updated.LastUpdatedAt = now
			updated.LastUpdatedBy = userID
			upserts = append(upserts, updated)
			if record, changed := NewUpdateRecord(stripConcept(existing), updated, userID, clientIP); changed {
				audits = append(audits, record)
			}
			continue
		}
		detail := domain.FactorDetail{
			DetailID:  uuid.NewString(),
			RatingID:  ratingID,
			ConceptID: p.concept.ConceptID,
			Value:     p.value,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		upserts = append(upserts, detail)
		audits = append(audits, NewCreateRecord(detail, userID, clientIP))
	}

	var deleteDetailIDs []string
	for _, d := range view.Details {
		if submitted[d.ConceptID] {
			continue
		}
		deleteDetailIDs = append(deleteDetailIDs, d.DetailID)
		audits = append(audits, NewDeleteRecord(stripConcept(d), userID, clientIP))
	}

	if err := s.ratingRepo.UpdateRatingWithFactors(ctx, after, upserts, deleteDetailIDs, audits); err != nil {
		s.LogError(ctx, err, "Failed to update rating", "rating_id", ratingID)
		return nil, err
	}

	s.LogInfo(ctx, "Rating updated", "rating_id", ratingID, "factor_upserts", len(upserts), "factor_deletes", len(deleteDetailIDs))
	return s.ratingRepo.FindRatingByID(ctx, ratingID)
}

func (s *ratingService) DeleteRating(ctx context.Context, ratingID, userID, clientIP string) error {
	view, err := s.ratingRepo.FindRatingByID(ctx, ratingID)
	if err != nil {
		return err
	}

	audits := []domain.AuditRecord{NewDeleteRecord(view.Rating, userID, clientIP)}
	for _, d := range view.Details {
		audits = append(audits, NewDeleteRecord(stripConcept(d), userID, clientIP))
	}

	if err := s.ratingRepo.DeleteRating(ctx, ratingID, audits); err != nil {
		s.LogError(ctx, err, "Failed to delete rating", "rating_id", ratingID)
		return err
	}

	s.LogInfo(ctx, "Rating deleted", "rating_id", ratingID)
	return nil
}

func (s *ratingService) ListConcepts(ctx context.Context) ([]domain.FactorConcept, error) {
	return s.catalog.All(ctx)
}

// stripConcept drops the nested catalog entry so audit snapshots compare
// only persisted fields.
func stripConcept(d domain.FactorDetail) domain.FactorDetail {
	d.Concept = nil
	return d
}
