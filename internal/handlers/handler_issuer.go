package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/fintaxcl/tax_events_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// issuerHandler handles HTTP requests related to issuers.
type issuerHandler struct {
	issuerService portssvc.IssuerSvcFacade
}

func newIssuerHandler(is portssvc.IssuerSvcFacade) *issuerHandler {
	return &issuerHandler{issuerService: is}
}

// registerIssuerRoutes registers routes related to issuers.
func registerIssuerRoutes(rg *gin.RouterGroup, issuerService portssvc.IssuerSvcFacade) {
	h := newIssuerHandler(issuerService)

	issuers := rg.Group("/issuers")
	{
		issuers.POST("", h.createIssuer)
		issuers.GET("", h.listIssuers)
		issuers.GET("/:id", h.getIssuerByID)
	}
}

// createIssuer godoc
// @Summary Register a new issuer
// @Description Registers an issuing entity with its Chilean tax ID and exchange ticker
// @Tags issuers
// @Accept  json
// @Produce  json
// @Param   issuer body dto.CreateIssuerRequest true "Issuer details"
// @Success 201 {object} dto.IssuerResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "RUT or ticker already registered"
// @Failure 500 {object} ErrorResponse "Failed to create issuer"
// @Security BearerAuth
// @Router /issuers [post]
func (h *issuerHandler) createIssuer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateIssuerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createIssuer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	issuer, err := h.issuerService.CreateIssuer(c.Request.Context(), req, userID, c.ClientIP())
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: fmt.Sprintf("Issuer with RUT '%s' or ticker '%s' already exists", req.RUT, req.Ticker)})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to create issuer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create issuer"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToIssuerResponse(issuer))
}

// listIssuers godoc
// @Summary List issuers
// @Description Lists all registered issuers ordered by ticker
// @Tags issuers
// @Produce  json
// @Success 200 {array} dto.IssuerResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list issuers"
// @Security BearerAuth
// @Router /issuers [get]
func (h *issuerHandler) listIssuers(c *gin.Context) {
	issuers, err := h.issuerService.ListIssuers(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list issuers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list issuers"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListIssuerResponse(issuers))
}

// getIssuerByID godoc
// @Summary Get issuer details
// @Description Retrieves one issuer by its id
// @Tags issuers
// @Produce  json
// @Param   id path string true "Issuer ID"
// @Success 200 {object} dto.IssuerResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Issuer not found"
// @Failure 500 {object} ErrorResponse "Failed to get issuer"
// @Security BearerAuth
// @Router /issuers/{id} [get]
func (h *issuerHandler) getIssuerByID(c *gin.Context) {
	issuerID := c.Param("id")

	issuer, err := h.issuerService.GetIssuerByID(c.Request.Context(), issuerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Issuer not found"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to get issuer", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get issuer"})
		return
	}
	c.JSON(http.StatusOK, dto.ToIssuerResponse(issuer))
}
