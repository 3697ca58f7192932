package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	"github.com/fintaxcl/tax_events_app/internal/core/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// --- Mock ConceptRepository ---
type MockConceptRepository struct {
	mock.Mock
}

func (m *MockConceptRepository) ListConcepts(ctx context.Context) ([]domain.FactorConcept, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FactorConcept), args.Error(1)
}

var _ portsrepo.ConceptRepository = (*MockConceptRepository)(nil)

// --- Mock IngestionRepository ---
type MockIngestionRepository struct {
	mock.Mock
}

func (m *MockIngestionRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockIngestionRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockIngestionRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockIngestionRepository) FindIssuerByTickerTx(ctx context.Context, tx pgx.Tx, ticker string) (*domain.Issuer, error) {
	args := m.Called(ctx, tx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issuer), args.Error(1)
}

func (m *MockIngestionRepository) InsertIssuerTx(ctx context.Context, tx pgx.Tx, issuer domain.Issuer) error {
	args := m.Called(ctx, tx, issuer)
	return args.Error(0)
}

func (m *MockIngestionRepository) FindEventByNaturalKeyTx(ctx context.Context, tx pgx.Tx, issuerID string, dividendNumber, fiscalYear int) (*domain.CorporateEvent, error) {
	args := m.Called(ctx, tx, issuerID, dividendNumber, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorporateEvent), args.Error(1)
}

func (m *MockIngestionRepository) InsertEventTx(ctx context.Context, tx pgx.Tx, event domain.CorporateEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *MockIngestionRepository) FindRatingByEventTx(ctx context.Context, tx pgx.Tx, eventID string) (*domain.TaxRating, error) {
	args := m.Called(ctx, tx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxRating), args.Error(1)
}

func (m *MockIngestionRepository) InsertRatingTx(ctx context.Context, tx pgx.Tx, rating domain.TaxRating) error {
	args := m.Called(ctx, tx, rating)
	return args.Error(0)
}

func (m *MockIngestionRepository) UpdateRatingTx(ctx context.Context, tx pgx.Tx, rating domain.TaxRating) error {
	args := m.Called(ctx, tx, rating)
	return args.Error(0)
}

func (m *MockIngestionRepository) FindDetailTx(ctx context.Context, tx pgx.Tx, ratingID, conceptID string) (*domain.FactorDetail, error) {
	args := m.Called(ctx, tx, ratingID, conceptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FactorDetail), args.Error(1)
}

func (m *MockIngestionRepository) InsertDetailTx(ctx context.Context, tx pgx.Tx, detail domain.FactorDetail) error {
	args := m.Called(ctx, tx, detail)
	return args.Error(0)
}

func (m *MockIngestionRepository) UpdateDetailTx(ctx context.Context, tx pgx.Tx, detail domain.FactorDetail) error {
	args := m.Called(ctx, tx, detail)
	return args.Error(0)
}

func (m *MockIngestionRepository) InsertAuditRecordsTx(ctx context.Context, tx pgx.Tx, records []domain.AuditRecord) error {
	args := m.Called(ctx, tx, records)
	return args.Error(0)
}

var _ portsrepo.IngestionRepository = (*MockIngestionRepository)(nil)

// buildIngestionWorkbook writes an in-memory .xlsx with the given rows, the
// first row being the header.
func buildIngestionWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var ingestionHeader = []interface{}{"Instrumento", "RUT", "Numero de dividendo", "Ejercicio", "Fecha", "Monto Unitario", "Factor 8", "Factor 9"}

// seedConcepts covers the two factor columns the tests use.
func seedConcepts() []domain.FactorConcept {
	return []domain.FactorConcept{
		{ConceptID: "concept-8", Column: 8, Description: "No constitutiva de Renta No Acogido a Impto.", DataType: "decimal"},
		{ConceptID: "concept-9", Column: 9, Description: "Impto. 1ra Categ. Afecto GI. Comp. Con Devolución", DataType: "decimal"},
	}
}

func TestIngestWorkbook_CopecScenarioCreatesEverything(t *testing.T) {
	mockRepo := new(MockIngestionRepository)
	mockConcepts := new(MockConceptRepository)
	mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	svc := services.NewIngestionService(mockRepo, services.NewConceptCatalog(mockConcepts))

	ctx := context.Background()
	buf := buildIngestionWorkbook(t, [][]interface{}{
		ingestionHeader,
		{"COPEC", "99999999-9", 5, 2024, "2024-03-01", 120, 0.4, 0.5},
	})

	mockRepo.On("Begin", ctx).Return(nil, nil).Once()
	mockRepo.On("FindIssuerByTickerTx", ctx, nil, "COPEC").Return(nil, nil).Once()

	var createdIssuer domain.Issuer
	mockRepo.On("InsertIssuerTx", ctx, nil, mock.MatchedBy(func(i domain.Issuer) bool {
		createdIssuer = i
		return i.Ticker == "COPEC" && i.RUT == "99999999-9" && i.CompanyType == domain.CompanyOpen && i.CreatedBy == "user-1"
	})).Return(nil).Once()

	mockRepo.On("FindEventByNaturalKeyTx", ctx, nil, mock.AnythingOfType("string"), 5, 2024).Return(nil, nil).Once()

	var createdEvent domain.CorporateEvent
	mockRepo.On("InsertEventTx", ctx, nil, mock.MatchedBy(func(e domain.CorporateEvent) bool {
		createdEvent = e
		return e.DividendNumber == 5 && e.FiscalYear == 2024 &&
			e.PaymentDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) &&
			e.IssuerID == createdIssuer.IssuerID && e.Market == domain.MarketShares
	})).Return(nil).Once()

	mockRepo.On("FindRatingByEventTx", ctx, nil, mock.AnythingOfType("string")).Return(nil, nil).Once()
	mockRepo.On("InsertRatingTx", ctx, nil, mock.MatchedBy(func(r domain.TaxRating) bool {
		return r.EventID == createdEvent.EventID && r.Status == domain.StatusDraft && r.UnitAmount.Equal(decimal.RequireFromString("120"))
	})).Return(nil).Once()

	mockRepo.On("FindDetailTx", ctx, nil, mock.AnythingOfType("string"), "concept-8").Return(nil, nil).Once()
	mockRepo.On("FindDetailTx", ctx, nil, mock.AnythingOfType("string"), "concept-9").Return(nil, nil).Once()
	mockRepo.On("InsertDetailTx", ctx, nil, mock.MatchedBy(func(d domain.FactorDetail) bool {
		return d.ConceptID == "concept-8" && d.Value.Equal(decimal.RequireFromString("0.4"))
	})).Return(nil).Once()
	mockRepo.On("InsertDetailTx", ctx, nil, mock.MatchedBy(func(d domain.FactorDetail) bool {
		return d.ConceptID == "concept-9" && d.Value.Equal(decimal.RequireFromString("0.5"))
	})).Return(nil).Once()

	// issuer + event + rating + two details
	mockRepo.On("InsertAuditRecordsTx", ctx, nil, mock.MatchedBy(func(records []domain.AuditRecord) bool {
		return len(records) == 5
	})).Return(nil).Once()

	mockRepo.On("Commit", ctx, nil).Return(nil).Once()
	mockRepo.On("Rollback", ctx, nil).Return(nil).Once()

	summary, err := svc.IngestWorkbook(ctx, buf, "user-1", "10.0.0.1")

	require.NoError(t, err)
	require.NotNil(t, summary)
	require.Equal(t, 1, summary.RowsProcessed)
	require.Equal(t, 1, summary.EventsCreated)
	mockRepo.AssertExpectations(t)
	mockConcepts.AssertExpectations(t)
}

func TestIngestWorkbook_FactorSumOverLimitRejectsBatch(t *testing.T) {
	mockRepo := new(MockIngestionRepository)
	mockConcepts := new(MockConceptRepository)
	mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	svc := services.NewIngestionService(mockRepo, services.NewConceptCatalog(mockConcepts))

	ctx := context.Background()
	buf := buildIngestionWorkbook(t, [][]interface{}{
		ingestionHeader,
		{"COPEC", "99999999-9", 5, 2024, "2024-03-01", 120, 0.7, 0.5},
	})

	mockRepo.On("Begin", ctx).Return(nil, nil).Once()
	mockRepo.On("Rollback", ctx, nil).Return(nil).Once()

	summary, err := svc.IngestWorkbook(ctx, buf, "user-1", "10.0.0.1")

	require.Error(t, err)
	require.Nil(t, summary)

	var batchErr *services.BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.RowErrors, 1)
	require.Contains(t, batchErr.RowErrors[0], "fila 2")
	require.Contains(t, batchErr.RowErrors[0], "1.2000")

	// Nothing was written and nothing committed.
	mockRepo.AssertNotCalled(t, "InsertIssuerTx", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestIngestWorkbook_OneBadRowRollsBackValidRows(t *testing.T) {
	mockRepo := new(MockIngestionRepository)
	mockConcepts := new(MockConceptRepository)
	mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	svc := services.NewIngestionService(mockRepo, services.NewConceptCatalog(mockConcepts))

	ctx := context.Background()
	buf := buildIngestionWorkbook(t, [][]interface{}{
		ingestionHeader,
		{"COPEC", "99999999-9", 5, 2024, "2024-03-01", 120, 0.4, 0.5},
		{"CMPC", "88888888-8", 3, 2024, "2024-04-01", 90, -0.1, 0.2},
	})

	mockRepo.On("Begin", ctx).Return(nil, nil).Once()
	// The valid first row is still reconciled before the batch is rejected.
	mockRepo.On("FindIssuerByTickerTx", ctx, nil, "COPEC").Return(nil, nil).Once()
	mockRepo.On("InsertIssuerTx", ctx, nil, mock.AnythingOfType("domain.Issuer")).Return(nil).Once()
	mockRepo.On("FindEventByNaturalKeyTx", ctx, nil, mock.AnythingOfType("string"), 5, 2024).Return(nil, nil).Once()
	mockRepo.On("InsertEventTx", ctx, nil, mock.AnythingOfType("domain.CorporateEvent")).Return(nil).Once()
	mockRepo.On("FindRatingByEventTx", ctx, nil, mock.AnythingOfType("string")).Return(nil, nil).Once()
	mockRepo.On("InsertRatingTx", ctx, nil, mock.AnythingOfType("domain.TaxRating")).Return(nil).Once()
	mockRepo.On("FindDetailTx", ctx, nil, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil, nil).Twice()
	mockRepo.On("InsertDetailTx", ctx, nil, mock.AnythingOfType("domain.FactorDetail")).Return(nil).Twice()
	mockRepo.On("InsertAuditRecordsTx", ctx, nil, mock.Anything).Return(nil).Once()
	mockRepo.On("Rollback", ctx, nil).Return(nil).Once()

	summary, err := svc.IngestWorkbook(ctx, buf, "user-1", "10.0.0.1")

	require.Error(t, err)
	require.Nil(t, summary)

	var batchErr *services.BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.RowErrors, 1)
	require.Contains(t, batchErr.RowErrors[0], "fila 3")
	require.Contains(t, batchErr.RowErrors[0], "columna 8")

	mockRepo.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestIngestWorkbook_MissingMandatoryColumnAbortsBeforeRows(t *testing.T) {
	mockRepo := new(MockIngestionRepository)
	mockConcepts := new(MockConceptRepository)
	svc := services.NewIngestionService(mockRepo, services.NewConceptCatalog(mockConcepts))

	ctx := context.Background()
	buf := buildIngestionWorkbook(t, [][]interface{}{
		{"Instrumento", "Numero de dividendo", "Ejercicio", "Fecha"},
		{"COPEC", 5, 2024, "2024-03-01"},
	})

	summary, err := svc.IngestWorkbook(ctx, buf, "user-1", "10.0.0.1")

	require.Error(t, err)
	require.Nil(t, summary)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Contains(t, err.Error(), "RUT")

	mockRepo.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestIngestWorkbook_NewIssuerWithoutRUTFailsRow(t *testing.T) {
	mockRepo := new(MockIngestionRepository)
	mockConcepts := new(MockConceptRepository)
	mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	svc := services.NewIngestionService(mockRepo, services.NewConceptCatalog(mockConcepts))

	ctx := context.Background()
	buf := buildIngestionWorkbook(t, [][]interface{}{
		ingestionHeader,
		{"NUEVA", "", 1, 2024, "2024-05-01", 50, 0.1, 0.2},
	})

	mockRepo.On("Begin", ctx).Return(nil, nil).Once()
	mockRepo.On("FindIssuerByTickerTx", ctx, nil, "NUEVA").Return(nil, nil).Once()
	mockRepo.On("Rollback", ctx, nil).Return(nil).Once()

	summary, err := svc.IngestWorkbook(ctx, buf, "user-1", "10.0.0.1")

	require.Error(t, err)
	require.Nil(t, summary)

	var batchErr *services.BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Contains(t, batchErr.RowErrors[0], "RUT")

	mockRepo.AssertNotCalled(t, "InsertIssuerTx", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestIngestWorkbook_SecondPassIsIdempotent(t *testing.T) {
	mockRepo := new(MockIngestionRepository)
	mockConcepts := new(MockConceptRepository)
	mockConcepts.On("ListConcepts", mock.Anything).Return(seedConcepts(), nil).Once()
	svc := services.NewIngestionService(mockRepo, services.NewConceptCatalog(mockConcepts))

	ctx := context.Background()
	buf := buildIngestionWorkbook(t, [][]interface{}{
		ingestionHeader,
		{"COPEC", "99999999-9", 5, 2024, "2024-03-01", 120, 0.4, 0.5},
	})

	issuer := &domain.Issuer{IssuerID: "issuer-1", RUT: "99999999-9", Ticker: "COPEC", CompanyType: domain.CompanyOpen}
	event := &domain.CorporateEvent{EventID: "event-1", IssuerID: "issuer-1", DividendNumber: 5, FiscalYear: 2024, Market: domain.MarketShares, PaymentDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	rating := &domain.TaxRating{RatingID: "rating-1", EventID: "event-1", UnitAmount: decimal.RequireFromString("120"), Status: domain.StatusDraft}
	detail8 := &domain.FactorDetail{DetailID: "detail-8", RatingID: "rating-1", ConceptID: "concept-8", Value: decimal.RequireFromString("0.4")}
	detail9 := &domain.FactorDetail{DetailID: "detail-9", RatingID: "rating-1", ConceptID: "concept-9", Value: decimal.RequireFromString("0.5")}

	mockRepo.On("Begin", ctx).Return(nil, nil).Once()
	mockRepo.On("FindIssuerByTickerTx", ctx, nil, "COPEC").Return(issuer, nil).Once()
	mockRepo.On("FindEventByNaturalKeyTx", ctx, nil, "issuer-1", 5, 2024).Return(event, nil).Once()
	mockRepo.On("FindRatingByEventTx", ctx, nil, "event-1").Return(rating, nil).Once()
	mockRepo.On("FindDetailTx", ctx, nil, "rating-1", "concept-8").Return(detail8, nil).Once()
	mockRepo.On("FindDetailTx", ctx, nil, "rating-1", "concept-9").Return(detail9, nil).Once()
	mockRepo.On("Commit", ctx, nil).Return(nil).Once()
	mockRepo.On("Rollback", ctx, nil).Return(nil).Once()

	summary, err := svc.IngestWorkbook(ctx, buf, "user-1", "10.0.0.1")

	require.NoError(t, err)
	require.NotNil(t, summary)
	require.Equal(t, 1, summary.RowsProcessed)
	require.Equal(t, 0, summary.EventsCreated)

	// Identical values: no writes of any kind, audit included.
	mockRepo.AssertNotCalled(t, "InsertIssuerTx", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateRatingTx", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateDetailTx", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "InsertAuditRecordsTx", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestBatchError_MessagesCapAtTenPlusRemainder(t *testing.T) {
	var rowErrors []string
	for i := 0; i < 14; i++ {
		rowErrors = append(rowErrors, "fila x: error")
	}
	batchErr := &services.BatchError{RowErrors: rowErrors}

	messages := batchErr.Messages()

	require.Len(t, messages, 11)
	require.Contains(t, messages[10], "4 errores mas")
}
