package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/core/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/fintaxcl/tax_events_app/internal/middleware"
	"github.com/fintaxcl/tax_events_app/internal/spreadsheet"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps workbook uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// uploadHandler handles the spreadsheet ingestion endpoint.
type uploadHandler struct {
	ingestionService portssvc.IngestionSvcFacade
}

func newUploadHandler(is portssvc.IngestionSvcFacade) *uploadHandler {
	return &uploadHandler{ingestionService: is}
}

// registerUploadRoutes registers the bulk ingestion route, rate limited per
// client IP and restricted to the roles that submit workbooks.
func registerUploadRoutes(rg *gin.RouterGroup, ingestionService portssvc.IngestionSvcFacade, rateLimit string) {
	h := newUploadHandler(ingestionService)

	rate, _ := limiter.NewRateFromFormatted(rateLimit)
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)

	rg.POST("/ratings/upload",
		middleware.RateLimit(ipLimiter),
		middleware.RequireRoles(domain.RoleStockBroker, domain.RoleTaxAnalyst),
		h.uploadWorkbook)
}

// uploadWorkbook godoc
// @Summary Ingest a ratings workbook
// @Description Uploads a single-sheet .xlsx workbook. Rows are validated and upserted atomically: any row error rejects the whole batch and reports the first ten messages.
// @Tags ratings
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "The .xlsx workbook"
// @Success 200 {object} dto.UploadSummary
// @Failure 400 {object} dto.UploadErrorResponse "Structural error or rejected batch"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Requires the stock-broker or tax-analyst role"
// @Failure 429 {object} ErrorResponse "Too many uploads"
// @Failure 500 {object} ErrorResponse "Failed to ingest workbook"
// @Security BearerAuth
// @Router /ratings/upload [post]
func (h *uploadHandler) uploadWorkbook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.UploadErrorResponse{Error: "A 'file' form field with the workbook is required"})
		return
	}

	if err := spreadsheet.ValidateUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusBadRequest, dto.UploadErrorResponse{Error: err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded workbook", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	summary, err := h.ingestionService.IngestWorkbook(c.Request.Context(), file, userID, c.ClientIP())
	if err != nil {
		var batchErr *services.BatchError
		if errors.As(err, &batchErr) {
			c.JSON(http.StatusBadRequest, dto.UploadErrorResponse{
				Error:     batchErr.Error(),
				RowErrors: batchErr.Messages(),
			})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, dto.UploadErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to ingest workbook", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to ingest workbook"})
		return
	}

	logger.Info("Workbook ingested",
		slog.Int("rows_processed", summary.RowsProcessed),
		slog.Int("events_created", summary.EventsCreated))
	c.JSON(http.StatusOK, summary)
}
