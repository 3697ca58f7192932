package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/core/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RatingRepository ---
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) CreateRatingWithEvent(ctx context.Context, event domain.CorporateEvent, rating domain.TaxRating, details []domain.FactorDetail, audits []domain.AuditRecord) error {
	args := m.Called(ctx, event, rating, details, audits)
	return args.Error(0)
}

func (m *MockRatingRepository) FindRatingByID(ctx context.Context, ratingID string) (*domain.RatingView, error) {
	args := m.Called(ctx, ratingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingView), args.Error(1)
}

func (m *MockRatingRepository) ListRatings(ctx context.Context, filter portsrepo.RatingFilter) ([]domain.RatingView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatingView), args.Error(1)
}

func (m *MockRatingRepository) UpdateRatingWithFactors(ctx context.Context, rating domain.TaxRating, upserts []domain.FactorDetail, deleteDetailIDs []string, audits []domain.AuditRecord) error {
	args := m.Called(ctx, rating, upserts, deleteDetailIDs, audits)
	return args.Error(0)
}

func (m *MockRatingRepository) DeleteRating(ctx context.Context, ratingID string, audits []domain.AuditRecord) error {
	args := m.Called(ctx, ratingID, audits)
	return args.Error(0)
}

var _ portsrepo.RatingRepository = (*MockRatingRepository)(nil)

// --- Mock IssuerRepository ---
type MockIssuerRepository struct {
	mock.Mock
}

func (m *MockIssuerRepository) SaveIssuer(ctx context.Context, issuer domain.Issuer, audit domain.AuditRecord) error {
	args := m.Called(ctx, issuer, audit)
	return args.Error(0)
}

func (m *MockIssuerRepository) FindIssuerByID(ctx context.Context, issuerID string) (*domain.Issuer, error) {
	args := m.Called(ctx, issuerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issuer), args.Error(1)
}

func (m *MockIssuerRepository) FindIssuerByTicker(ctx context.Context, ticker string) (*domain.Issuer, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issuer), args.Error(1)
}

func (m *MockIssuerRepository) ListIssuers(ctx context.Context) ([]domain.Issuer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Issuer), args.Error(1)
}

var _ portsrepo.IssuerRepository = (*MockIssuerRepository)(nil)

// --- Test Suite ---
type RatingServiceTestSuite struct {
	suite.Suite
	mockRepo     *MockRatingRepository
	mockIssuers  *MockIssuerRepository
	mockConcepts *MockConceptRepository
	service      portssvc.RatingSvcFacade
	ctx          context.Context
}

func (suite *RatingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockRatingRepository)
	suite.mockIssuers = new(MockIssuerRepository)
	suite.mockConcepts = new(MockConceptRepository)
	suite.service = services.NewRatingService(suite.mockRepo, suite.mockIssuers, services.NewConceptCatalog(suite.mockConcepts))
	suite.ctx = context.Background()
}

const testIssuerID = "7b9f0e2a-96b8-4bfb-9a79-2f43cf2e3b19"

func (suite *RatingServiceTestSuite) testIssuer() *domain.Issuer {
	return &domain.Issuer{IssuerID: testIssuerID, RUT: "99999999-9", LegalName: "Empresas Copec S.A.", Ticker: "COPEC", CompanyType: domain.CompanyOpen}
}

func (suite *RatingServiceTestSuite) TestCreateRating_Success() {
	suite.mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	suite.mockIssuers.On("FindIssuerByID", suite.ctx, testIssuerID).Return(suite.testIssuer(), nil).Once()

	var createdRatingID string
	suite.mockRepo.On("CreateRatingWithEvent", suite.ctx,
		mock.MatchedBy(func(e domain.CorporateEvent) bool {
			return e.IssuerID == testIssuerID && e.DividendNumber == 5 && e.FiscalYear == 2024 && e.Market == domain.MarketShares
		}),
		mock.MatchedBy(func(r domain.TaxRating) bool {
			createdRatingID = r.RatingID
			return r.Status == domain.StatusDraft && r.UnitAmount.Equal(decimal.RequireFromString("120.5"))
		}),
		mock.MatchedBy(func(details []domain.FactorDetail) bool {
			return len(details) == 2
		}),
		mock.MatchedBy(func(audits []domain.AuditRecord) bool {
			// event + rating + two details
			return len(audits) == 4
		}),
	).Return(nil).Once()

	suite.mockRepo.On("FindRatingByID", suite.ctx, mock.AnythingOfType("string")).Return(&domain.RatingView{}, nil).Once()

	req := dto.CreateRatingRequest{
		IssuerID:       testIssuerID,
		PaymentDate:    "2024-03-01",
		DividendNumber: 5,
		FiscalYear:     2024,
		UnitAmount:     "120,5",
		Factors: map[string]string{
			"concept-8": "0.4",
			"concept-9": "0.5",
		},
	}

	view, err := suite.service.CreateRating(suite.ctx, req, "user-1", "10.0.0.1")

	suite.Require().NoError(err)
	suite.Require().NotNil(view)
	suite.NotEmpty(createdRatingID)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockIssuers.AssertExpectations(suite.T())
}

func (suite *RatingServiceTestSuite) TestCreateRating_FactorSumOverLimit() {
	suite.mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	suite.mockIssuers.On("FindIssuerByID", suite.ctx, testIssuerID).Return(suite.testIssuer(), nil).Once()

	req := dto.CreateRatingRequest{
		IssuerID:       testIssuerID,
		PaymentDate:    "2024-03-01",
		DividendNumber: 5,
		FiscalYear:     2024,
		UnitAmount:     "120",
		Factors: map[string]string{
			"concept-8": "0.7",
			"concept-9": "0.5",
		},
	}

	view, err := suite.service.CreateRating(suite.ctx, req, "user-1", "10.0.0.1")

	suite.Require().Error(err)
	suite.Nil(view)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "1.2000")
	suite.mockRepo.AssertNotCalled(suite.T(), "CreateRatingWithEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RatingServiceTestSuite) TestCreateRating_UnknownConceptID() {
	suite.mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	suite.mockIssuers.On("FindIssuerByID", suite.ctx, testIssuerID).Return(suite.testIssuer(), nil).Once()

	req := dto.CreateRatingRequest{
		IssuerID:       testIssuerID,
		PaymentDate:    "2024-03-01",
		DividendNumber: 5,
		FiscalYear:     2024,
		UnitAmount:     "120",
		Factors:        map[string]string{"no-such-concept": "0.4"},
	}

	view, err := suite.service.CreateRating(suite.ctx, req, "user-1", "10.0.0.1")

	suite.Require().Error(err)
	suite.Nil(view)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "no-such-concept")
}

func (suite *RatingServiceTestSuite) TestCreateRating_MissingIssuer() {
	suite.mockIssuers.On("FindIssuerByID", suite.ctx, testIssuerID).Return(nil, apperrors.ErrNotFound).Once()

	req := dto.CreateRatingRequest{
		IssuerID:       testIssuerID,
		PaymentDate:    "2024-03-01",
		DividendNumber: 5,
		FiscalYear:     2024,
		UnitAmount:     "120",
	}

	view, err := suite.service.CreateRating(suite.ctx, req, "user-1", "10.0.0.1")

	suite.Require().Error(err)
	suite.Nil(view)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// existingView builds a persisted rating with one factor on column 8.
func (suite *RatingServiceTestSuite) existingView() *domain.RatingView {
	return &domain.RatingView{
		Rating: domain.TaxRating{
			RatingID:   "rating-1",
			EventID:    "event-1",
			UnitAmount: decimal.RequireFromString("100"),
			Status:     domain.StatusDraft,
		},
		Event:  domain.CorporateEvent{EventID: "event-1", IssuerID: testIssuerID, DividendNumber: 5, FiscalYear: 2024},
		Issuer: *suite.testIssuer(),
		Details: []domain.FactorDetail{
			{DetailID: "detail-8", RatingID: "rating-1", ConceptID: "concept-8", Value: decimal.RequireFromString("0.4")},
		},
	}
}

func (suite *RatingServiceTestSuite) TestUpdateRating_UnitAmountChangeProducesExactDiff() {
	suite.mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	suite.mockRepo.On("FindRatingByID", suite.ctx, "rating-1").Return(suite.existingView(), nil).Twice()

	suite.mockRepo.On("UpdateRatingWithFactors", suite.ctx,
		mock.MatchedBy(func(r domain.TaxRating) bool {
			return r.RatingID == "rating-1" && r.UnitAmount.Equal(decimal.RequireFromString("150"))
		}),
		mock.MatchedBy(func(upserts []domain.FactorDetail) bool {
			return len(upserts) == 0
		}),
		mock.MatchedBy(func(deleteDetailIDs []string) bool {
			return len(deleteDetailIDs) == 0
		}),
		mock.MatchedBy(func(audits []domain.AuditRecord) bool {
			if len(audits) != 1 || audits[0].Action != domain.ActionUpdate {
				return false
			}
			var changes map[string]domain.FieldChange
			if err := json.Unmarshal(audits[0].Changes, &changes); err != nil {
				return false
			}
			change, ok := changes["monto_unitario_pesos"]
			return len(changes) == 1 && ok &&
				change.Old != nil && *change.Old == "100" &&
				change.New != nil && *change.New == "150"
		}),
	).Return(nil).Once()

	req := dto.UpdateRatingRequest{
		UnitAmount: "150",
		Factors:    map[string]string{"concept-8": "0.4"},
	}

	view, err := suite.service.UpdateRating(suite.ctx, "rating-1", req, "user-1", "10.0.0.1")

	suite.Require().NoError(err)
	suite.Require().NotNil(view)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RatingServiceTestSuite) TestUpdateRating_AbsentFactorKeyClearsDetail() {
	suite.mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	suite.mockRepo.On("FindRatingByID", suite.ctx, "rating-1").Return(suite.existingView(), nil).Twice()

	suite.mockRepo.On("UpdateRatingWithFactors", suite.ctx,
		mock.AnythingOfType("domain.TaxRating"),
		mock.MatchedBy(func(upserts []domain.FactorDetail) bool {
			return len(upserts) == 1 && upserts[0].ConceptID == "concept-9"
		}),
		mock.MatchedBy(func(deleteDetailIDs []string) bool {
			return len(deleteDetailIDs) == 1 && deleteDetailIDs[0] == "detail-8"
		}),
		mock.MatchedBy(func(audits []domain.AuditRecord) bool {
			var sawCreate, sawDelete bool
			for _, a := range audits {
				switch a.Action {
				case domain.ActionCreate:
					sawCreate = true
				case domain.ActionDelete:
					sawDelete = true
				}
			}
			return sawCreate && sawDelete
		}),
	).Return(nil).Once()

	// Column 8 is not posted back: the detail is cleared. Column 9 is new.
	req := dto.UpdateRatingRequest{
		UnitAmount: "100",
		Factors:    map[string]string{"concept-9": "0.2"},
	}

	view, err := suite.service.UpdateRating(suite.ctx, "rating-1", req, "user-1", "10.0.0.1")

	suite.Require().NoError(err)
	suite.Require().NotNil(view)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RatingServiceTestSuite) TestUpdateRating_BlankFactorValueAlsoClears() {
	suite.mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	suite.mockRepo.On("FindRatingByID", suite.ctx, "rating-1").Return(suite.existingView(), nil).Twice()

	suite.mockRepo.On("UpdateRatingWithFactors", suite.ctx,
		mock.AnythingOfType("domain.TaxRating"),
		mock.MatchedBy(func(upserts []domain.FactorDetail) bool { return len(upserts) == 0 }),
		mock.MatchedBy(func(deleteDetailIDs []string) bool {
			return len(deleteDetailIDs) == 1 && deleteDetailIDs[0] == "detail-8"
		}),
		mock.Anything,
	).Return(nil).Once()

	req := dto.UpdateRatingRequest{
		UnitAmount: "100",
		Factors:    map[string]string{"concept-8": ""},
	}

	_, err := suite.service.UpdateRating(suite.ctx, "rating-1", req, "user-1", "10.0.0.1")

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RatingServiceTestSuite) TestUpdateRating_NotFound() {
	suite.mockRepo.On("FindRatingByID", suite.ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	view, err := suite.service.UpdateRating(suite.ctx, "missing", dto.UpdateRatingRequest{UnitAmount: "10"}, "user-1", "10.0.0.1")

	suite.Require().Error(err)
	suite.Nil(view)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RatingServiceTestSuite) TestDeleteRating_AuditsRatingAndDetails() {
	suite.mockRepo.On("FindRatingByID", suite.ctx, "rating-1").Return(suite.existingView(), nil).Once()
	suite.mockRepo.On("DeleteRating", suite.ctx, "rating-1", mock.MatchedBy(func(audits []domain.AuditRecord) bool {
		if len(audits) != 2 {
			return false
		}
		for _, a := range audits {
			if a.Action != domain.ActionDelete {
				return false
			}
		}
		return true
	})).Return(nil).Once()

	err := suite.service.DeleteRating(suite.ctx, "rating-1", "user-1", "10.0.0.1")

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestRatingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RatingServiceTestSuite))
}
