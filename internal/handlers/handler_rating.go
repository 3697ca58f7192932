package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/fintaxcl/tax_events_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ratingHandler handles HTTP requests related to tax ratings and the
// factor-concept catalog.
type ratingHandler struct {
	ratingService portssvc.RatingSvcFacade
}

func newRatingHandler(rs portssvc.RatingSvcFacade) *ratingHandler {
	return &ratingHandler{ratingService: rs}
}

// RegisterRatingRoutes registers routes related to tax ratings. Write
// operations are restricted to tax analysts; reads are open to any
// authenticated user.
func RegisterRatingRoutes(rg *gin.RouterGroup, ratingService portssvc.RatingSvcFacade) {
	h := newRatingHandler(ratingService)
	analystOnly := middleware.RequireRoles(domain.RoleTaxAnalyst)

	ratings := rg.Group("/ratings")
	{
		ratings.POST("", analystOnly, h.createRating)
		ratings.GET("", h.listRatings)
		ratings.GET("/:id", h.getRatingByID)
		ratings.PUT("/:id", analystOnly, h.updateRating)
		ratings.DELETE("/:id", analystOnly, h.deleteRating)
	}

	rg.GET("/concepts", h.listConcepts)
}

// createRating godoc
// @Summary Create a tax rating manually
// @Description Records a corporate event with its tax rating and factor values in one submission
// @Tags ratings
// @Accept  json
// @Produce  json
// @Param   rating body dto.CreateRatingRequest true "Rating details"
// @Success 201 {object} dto.RatingResponse
// @Failure 400 {object} ErrorResponse "Invalid input or business-rule violation"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Requires the tax-analyst role"
// @Failure 409 {object} ErrorResponse "Rating already exists for this event"
// @Failure 500 {object} ErrorResponse "Failed to create rating"
// @Security BearerAuth
// @Router /ratings [post]
func (h *ratingHandler) createRating(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createRating", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	view, err := h.ratingService.CreateRating(c.Request.Context(), req, userID, c.ClientIP())
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "A rating already exists for this event"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to create rating", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create rating"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToRatingResponse(view))
}

// listRatings godoc
// @Summary List tax ratings
// @Description Lists ratings with nested event, issuer and factor details; filterable by ticker substring, fiscal year and market
// @Tags ratings
// @Produce  json
// @Param   ticker query string false "Ticker substring filter"
// @Param   fiscalYear query int false "Fiscal year filter"
// @Param   market query string false "Market filter (ACN, CFI, CFM)"
// @Success 200 {array} dto.RatingResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list ratings"
// @Security BearerAuth
// @Router /ratings [get]
func (h *ratingHandler) listRatings(c *gin.Context) {
	filter := portsrepo.RatingFilter{
		Ticker: c.Query("ticker"),
		Market: c.Query("market"),
	}
	if raw := c.Query("fiscalYear"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "fiscalYear must be an integer"})
			return
		}
		filter.FiscalYear = year
	}

	views, err := h.ratingService.ListRatings(c.Request.Context(), filter)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list ratings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list ratings"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListRatingResponse(views))
}

// getRatingByID godoc
// @Summary Get tax rating details
// @Description Retrieves one rating with its event, issuer and factor details
// @Tags ratings
// @Produce  json
// @Param   id path string true "Rating ID"
// @Success 200 {object} dto.RatingResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Rating not found"
// @Failure 500 {object} ErrorResponse "Failed to get rating"
// @Security BearerAuth
// @Router /ratings/{id} [get]
func (h *ratingHandler) getRatingByID(c *gin.Context) {
	ratingID := c.Param("id")

	view, err := h.ratingService.GetRatingByID(c.Request.Context(), ratingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Rating not found"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to get rating", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get rating"})
		return
	}
	c.JSON(http.StatusOK, dto.ToRatingResponse(view))
}

// updateRating godoc
// @Summary Update a tax rating
// @Description Applies the edit form: amounts, state and the full factor set. A factor absent from the map, or blank, is cleared.
// @Tags ratings
// @Accept  json
// @Produce  json
// @Param   id path string true "Rating ID"
// @Param   rating body dto.UpdateRatingRequest true "Updated rating"
// @Success 200 {object} dto.RatingResponse
// @Failure 400 {object} ErrorResponse "Invalid input or business-rule violation"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Requires the tax-analyst role"
// @Failure 404 {object} ErrorResponse "Rating not found"
// @Failure 500 {object} ErrorResponse "Failed to update rating"
// @Security BearerAuth
// @Router /ratings/{id} [put]
func (h *ratingHandler) updateRating(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ratingID := c.Param("id")

	var req dto.UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateRating", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	view, err := h.ratingService.UpdateRating(c.Request.Context(), ratingID, req, userID, c.ClientIP())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Rating not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to update rating", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update rating"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToRatingResponse(view))
}

// deleteRating godoc
// @Summary Delete a tax rating
// @Description Deletes the rating and its factor details, recording the pre-delete snapshot in the audit trail
// @Tags ratings
// @Produce  json
// @Param   id path string true "Rating ID"
// @Success 204 "Deleted"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Requires the tax-analyst role"
// @Failure 404 {object} ErrorResponse "Rating not found"
// @Failure 500 {object} ErrorResponse "Failed to delete rating"
// @Security BearerAuth
// @Router /ratings/{id} [delete]
func (h *ratingHandler) deleteRating(c *gin.Context) {
	ratingID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.ratingService.DeleteRating(c.Request.Context(), ratingID, userID, c.ClientIP()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Rating not found"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to delete rating", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete rating"})
		return
	}

	c.Status(http.StatusNoContent)
}

// listConcepts godoc
// @Summary List factor concepts
// @Description Lists the seeded DJ 1949 factor-concept catalog ordered by declaration column
// @Tags ratings
// @Produce  json
// @Success 200 {array} dto.ConceptResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list concepts"
// @Security BearerAuth
// @Router /concepts [get]
func (h *ratingHandler) listConcepts(c *gin.Context) {
	concepts, err := h.ratingService.ListConcepts(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list concepts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list concepts"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListConceptResponse(concepts))
}
