package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/fintaxcl/tax_events_app/internal/spreadsheet"
	"github.com/fintaxcl/tax_events_app/internal/utils/factors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Spreadsheet column names, inherited from the files brokers already send.
const (
	colInstrument     = "Instrumento"
	colRUT            = "RUT"
	colDividendNumber = "Numero de dividendo"
	colFiscalYear     = "Ejercicio"
	colPaymentDate    = "Fecha"
	colMarket         = "Mercado"
	colSequence       = "Secuencia"
	colUnitAmount     = "Monto Unitario"
	colCompanyType    = "Tipo sociedad"
)

// mandatoryColumns must all be present in the header row; a missing one
// aborts the batch before any row is read.
var mandatoryColumns = []string{colInstrument, colRUT, colDividendNumber, colFiscalYear, colPaymentDate}

// maxReportedRowErrors caps how many row errors a rejected batch reports;
// the rest is summarized as a count.
const maxReportedRowErrors = 10

// BatchError is returned when a batch is rejected: every row error was
// accumulated, the transaction was rolled back and nothing was persisted.
type BatchError struct {
	RowErrors []string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("la carga fue rechazada: %d filas con errores", len(e.RowErrors))
}

// Messages returns the first rows' errors plus a remainder count.
func (e *BatchError) Messages() []string {
	if len(e.RowErrors) <= maxReportedRowErrors {
		return e.RowErrors
	}
	out := make([]string, maxReportedRowErrors, maxReportedRowErrors+1)
	copy(out, e.RowErrors[:maxReportedRowErrors])
	out = append(out, fmt.Sprintf("... y %d errores mas", len(e.RowErrors)-maxReportedRowErrors))
	return out
}

type ingestionService struct {
	BaseService
	ingestionRepo portsrepo.IngestionRepository
	catalog       *ConceptCatalog
}

// NewIngestionService creates the spreadsheet ingestion facade.
func NewIngestionService(ingestionRepo portsrepo.IngestionRepository, catalog *ConceptCatalog) portssvc.IngestionSvcFacade {
	return &ingestionService{ingestionRepo: ingestionRepo, catalog: catalog}
}

var _ portssvc.IngestionSvcFacade = (*ingestionService)(nil)

// IngestWorkbook runs one all-or-nothing ingestion batch. Rows are
// reconciled independently inside a single transaction; every row error is
// accumulated and a non-empty accumulator rolls the whole batch back.
func (s *ingestionService) IngestWorkbook(ctx context.Context, r io.Reader, userID, clientIP string) (*dto.UploadSummary, error) {
	table, err := spreadsheet.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	var missing []string
	for _, col := range mandatoryColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: faltan columnas obligatorias: %s", apperrors.ErrValidation, strings.Join(missing, ", "))
	}

	conceptsByColumn, err := s.catalog.ByColumn(ctx)
	if err != nil {
		return nil, err
	}
	factorColumns := table.FactorColumns()

	tx, err := s.ingestionRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.ingestionRepo.Rollback(ctx, tx)

	var rowErrors []string
	rowsProcessed := 0
	eventsCreated := 0

	for _, row := range table.Rows() {
		if row.IsEmpty() {
			continue
		}
		created, err := s.reconcileRow(ctx, tx, row, factorColumns, conceptsByColumn, userID, clientIP)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("fila %d: %s", row.Line, err.Error()))
			continue
		}
		rowsProcessed++
		if created {
			eventsCreated++
		}
	}

	if len(rowErrors) > 0 {
		// Deferred rollback discards every row already written.
		s.LogWarn(ctx, "Ingestion batch rejected", "row_errors", len(rowErrors))
		return nil, &BatchError{RowErrors: rowErrors}
	}

	if err := s.ingestionRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Ingestion batch committed", "rows_processed", rowsProcessed, "events_created", eventsCreated)
	return &dto.UploadSummary{RowsProcessed: rowsProcessed, EventsCreated: eventsCreated}, nil
}

// reconcileRow upserts one spreadsheet row: issuer by ticker, event by
// natural key, rating by event, factor details by (rating, concept). The
// returned flag reports whether the corporate event was newly created.
func (s *ingestionService) reconcileRow(ctx context.Context, tx pgx.Tx, row spreadsheet.Row, factorColumns map[int]string, conceptsByColumn map[int]domain.FactorConcept, userID, clientIP string) (bool, error) {
	ticker := row.Get(colInstrument)
	if ticker == "" {
		return false, fmt.Errorf("la columna '%s' esta vacia", colInstrument)
	}

	dividendNumber, err := row.Int(colDividendNumber)
	if err != nil {
		return false, err
	}
	fiscalYear, err := row.Int(colFiscalYear)
	if err != nil {
		return false, err
	}
	paymentDate, err := row.Date(colPaymentDate)
	if err != nil {
		return false, err
	}

	unitAmount, _, err := row.Decimal(colUnitAmount)
	if err != nil {
		return false, err
	}

	factorValues := make(map[int]decimal.Decimal)
	for column, header := range factorColumns {
		value, present, err := row.Decimal(header)
		if err != nil {
			return false, err
		}
		if present {
			factorValues[column] = value
		}
	}

	if violations := factors.Validate(factorValues, unitAmount); len(violations) > 0 {
		return false, fmt.Errorf("%s", strings.Join(violations, "; "))
	}

	now := time.Now()
	auditFields := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	var audits []domain.AuditRecord

	issuer, err := s.ingestionRepo.FindIssuerByTickerTx(ctx, tx, ticker)
	if err != nil {
		return false, err
	}
	if issuer == nil {
		rut := row.Get(colRUT)
		if rut == "" {
			return false, fmt.Errorf("el emisor '%s' no existe y la fila no trae RUT", ticker)
		}
		newIssuer := domain.Issuer{
			IssuerID:    uuid.NewString(),
			RUT:         rut,
			LegalName:   ticker,
			Ticker:      ticker,
			CompanyType: companyTypeFromText(row.Get(colCompanyType)),
			AuditFields: auditFields,
		}
		if err := s.ingestionRepo.InsertIssuerTx(ctx, tx, newIssuer); err != nil {
			return false, err
		}
		audits = append(audits, NewCreateRecord(newIssuer, userID, clientIP))
		issuer = &newIssuer
	}

	eventCreated := false
	event, err := s.ingestionRepo.FindEventByNaturalKeyTx(ctx, tx, issuer.IssuerID, dividendNumber, fiscalYear)
	if err != nil {
		return false, err
	}
	if event == nil {
		sequence := 0
		if row.Get(colSequence) != "" {
			sequence, err = row.Int(colSequence)
			if err != nil {
				return false, err
			}
		}
		newEvent := domain.CorporateEvent{
			EventID:        uuid.NewString(),
			IssuerID:       issuer.IssuerID,
			Market:         marketFromText(row.Get(colMarket)),
			PaymentDate:    paymentDate,
			DividendNumber: dividendNumber,
			Sequence:       sequence,
			FiscalYear:     fiscalYear,
			AuditFields:    auditFields,
		}
		if err := s.ingestionRepo.InsertEventTx(ctx, tx, newEvent); err != nil {
			return false, err
		}
		audits = append(audits, NewCreateRecord(newEvent, userID, clientIP))
		event = &newEvent
		eventCreated = true
	}

	rating, err := s.ingestionRepo.FindRatingByEventTx(ctx, tx, event.EventID)
	if err != nil {
		return false, err
	}
	if rating == nil {
		newRating := domain.TaxRating{
			RatingID:    uuid.NewString(),
			EventID:     event.EventID,
			UnitAmount:  unitAmount,
			Status:      domain.StatusDraft,
			AuditFields: auditFields,
		}
		if err := s.ingestionRepo.InsertRatingTx(ctx, tx, newRating); err != nil {
			return false, err
		}
		audits = append(audits, NewCreateRecord(newRating, userID, clientIP))
		rating = &newRating
	} else {
		// Ingested data is never auto-validated: a re-ingested rating drops
		// back to draft.
		updated := *rating
		updated.UnitAmount = unitAmount
		updated.Status = domain.StatusDraft
		updated.LastUpdatedAt = now
		updated.LastUpdatedBy = userID
		if record, changed := NewUpdateRecord(*rating, updated, userID, clientIP); changed {
			if err := s.ingestionRepo.UpdateRatingTx(ctx, tx, updated); err != nil {
				return false, err
			}
			audits = append(audits, record)
			rating = &updated
		}
	}

	for column, value := range factorValues {
		concept, known := conceptsByColumn[column]
		if !known {
			// No catalog entry for this column: deliberately skipped.
			continue
		}
		existing, err := s.ingestionRepo.FindDetailTx(ctx, tx, rating.RatingID, concept.ConceptID)
		if err != nil {
			return false, err
		}
		if existing == nil {
			detail := domain.FactorDetail{
				DetailID:    uuid.NewString(),
				RatingID:    rating.RatingID,
				ConceptID:   concept.ConceptID,
				Value:       value,
				AuditFields: auditFields,
			}
			if err := s.ingestionRepo.InsertDetailTx(ctx, tx, detail); err != nil {
				return false, err
			}
			audits = append(audits, NewCreateRecord(detail, userID, clientIP))
			continue
		}
		if existing.Value.Equal(value) {
			continue
		}
		updated := *existing
		updated.Value = value
		updated.LastUpdatedAt = now
		updated.LastUpdatedBy = userID
		if err := s.ingestionRepo.UpdateDetailTx(ctx, tx, updated); err != nil {
			return false, err
		}
		if record, changed := NewUpdateRecord(*existing, updated, userID, clientIP); changed {
			audits = append(audits, record)
		}
	}

	if len(audits) > 0 {
		if err := s.ingestionRepo.InsertAuditRecordsTx(ctx, tx, audits); err != nil {
			return false, err
		}
	}

	return eventCreated, nil
}

// companyTypeFromText infers open/closed corporation from the free-text
// spreadsheet column.
func companyTypeFromText(text string) domain.CompanyType {
	normalized := strings.ToUpper(strings.TrimSpace(text))
	if normalized == string(domain.CompanyClosed) || strings.Contains(normalized, "CERRADA") {
		return domain.CompanyClosed
	}
	return domain.CompanyOpen
}

// marketFromText maps the spreadsheet market code, defaulting to shares.
func marketFromText(text string) domain.MarketType {
	switch domain.MarketType(strings.ToUpper(strings.TrimSpace(text))) {
	case domain.MarketInvestmentFundUnits:
		return domain.MarketInvestmentFundUnits
	case domain.MarketMutualFundUnits:
		return domain.MarketMutualFundUnits
	default:
		return domain.MarketShares
	}
}
