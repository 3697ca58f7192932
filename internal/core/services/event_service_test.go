package services_test

import (
	"context"
	"testing"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/core/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock EventRepository ---
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) SaveEvent(ctx context.Context, event domain.CorporateEvent, audit domain.AuditRecord) error {
	args := m.Called(ctx, event, audit)
	return args.Error(0)
}

func (m *MockEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.CorporateEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorporateEvent), args.Error(1)
}

func (m *MockEventRepository) FindEventByNaturalKey(ctx context.Context, issuerID string, dividendNumber, fiscalYear int) (*domain.CorporateEvent, error) {
	args := m.Called(ctx, issuerID, dividendNumber, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorporateEvent), args.Error(1)
}

func (m *MockEventRepository) ListEvents(ctx context.Context) ([]domain.CorporateEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorporateEvent), args.Error(1)
}

var _ portsrepo.EventRepository = (*MockEventRepository)(nil)

// --- Test Suite ---
type EventServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockEventRepository
	mockIssuers *MockIssuerRepository
	service     portssvc.EventSvcFacade
	ctx         context.Context
}

func (suite *EventServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockEventRepository)
	suite.mockIssuers = new(MockIssuerRepository)
	suite.service = services.NewEventService(suite.mockRepo, suite.mockIssuers)
	suite.ctx = context.Background()
}

func (suite *EventServiceTestSuite) knownIssuer() *domain.Issuer {
	return &domain.Issuer{IssuerID: testIssuerID, RUT: "99999999-9", LegalName: "Empresas Copec S.A.", Ticker: "COPEC", CompanyType: domain.CompanyOpen}
}

func (suite *EventServiceTestSuite) createRequest() dto.CreateEventRequest {
	return dto.CreateEventRequest{
		IssuerID:       testIssuerID,
		Market:         string(domain.MarketShares),
		PaymentDate:    "2024-03-01",
		DividendNumber: 5,
		Sequence:       1,
		FiscalYear:     2024,
	}
}

func (suite *EventServiceTestSuite) TestCreateEvent_Success() {
	suite.mockIssuers.On("FindIssuerByID", suite.ctx, testIssuerID).Return(suite.knownIssuer(), nil)
	suite.mockRepo.On("FindEventByNaturalKey", suite.ctx, testIssuerID, 5, 2024).Return(nil, apperrors.ErrNotFound)
	suite.mockRepo.On("SaveEvent", suite.ctx,
		mock.MatchedBy(func(e domain.CorporateEvent) bool {
			return e.IssuerID == testIssuerID && e.DividendNumber == 5 && e.FiscalYear == 2024
		}),
		mock.MatchedBy(func(a domain.AuditRecord) bool {
			return a.Action == domain.ActionCreate && a.EntityType == "corporate_event"
		}),
	).Return(nil)

	event, err := suite.service.CreateEvent(suite.ctx, suite.createRequest(), "user-1", "10.0.0.1")

	suite.Require().NoError(err)
	suite.Require().NotNil(event)
	suite.Equal(5, event.DividendNumber)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) TestCreateEvent_DuplicateNaturalKeyRejected() {
	suite.mockIssuers.On("FindIssuerByID", suite.ctx, testIssuerID).Return(suite.knownIssuer(), nil)
	suite.mockRepo.On("FindEventByNaturalKey", suite.ctx, testIssuerID, 5, 2024).
		Return(&domain.CorporateEvent{EventID: "existing-event", IssuerID: testIssuerID, DividendNumber: 5, FiscalYear: 2024}, nil)

	event, err := suite.service.CreateEvent(suite.ctx, suite.createRequest(), "user-1", "10.0.0.1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(event)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveEvent", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EventServiceTestSuite) TestCreateEvent_UnknownIssuerIsValidationError() {
	suite.mockIssuers.On("FindIssuerByID", suite.ctx, testIssuerID).Return(nil, apperrors.ErrNotFound)

	event, err := suite.service.CreateEvent(suite.ctx, suite.createRequest(), "user-1", "10.0.0.1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(event)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindEventByNaturalKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEventServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EventServiceTestSuite))
}
