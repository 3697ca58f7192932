package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/fintaxcl/tax_events_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// eventHandler handles HTTP requests related to corporate events.
type eventHandler struct {
	eventService portssvc.EventSvcFacade
}

func newEventHandler(es portssvc.EventSvcFacade) *eventHandler {
	return &eventHandler{eventService: es}
}

// registerEventRoutes registers routes related to corporate events.
func registerEventRoutes(rg *gin.RouterGroup, eventService portssvc.EventSvcFacade) {
	h := newEventHandler(eventService)

	events := rg.Group("/events")
	{
		events.POST("", h.createEvent)
		events.GET("", h.listEvents)
		events.GET("/:id", h.getEventByID)
	}
}

// createEvent godoc
// @Summary Record a corporate event
// @Description Records one dividend/distribution payment event for an issuer
// @Tags events
// @Accept  json
// @Produce  json
// @Param   event body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Event already exists for this dividend number and fiscal year"
// @Failure 500 {object} ErrorResponse "Failed to create event"
// @Security BearerAuth
// @Router /events [post]
func (h *eventHandler) createEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), req, userID, c.ClientIP())
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "An event with this dividend number and fiscal year already exists for the issuer"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		} else {
			logger.Error("Failed to create event", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create event"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// listEvents godoc
// @Summary List corporate events
// @Description Lists corporate events, newest payment date first
// @Tags events
// @Produce  json
// @Success 200 {array} dto.EventResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list events"
// @Security BearerAuth
// @Router /events [get]
func (h *eventHandler) listEvents(c *gin.Context) {
	events, err := h.eventService.ListEvents(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list events", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list events"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListEventResponse(events))
}

// getEventByID godoc
// @Summary Get corporate event details
// @Description Retrieves one corporate event by its id
// @Tags events
// @Produce  json
// @Param   id path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Event not found"
// @Failure 500 {object} ErrorResponse "Failed to get event"
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *eventHandler) getEventByID(c *gin.Context) {
	eventID := c.Param("id")

	event, err := h.eventService.GetEventByID(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Event not found"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to get event", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get event"})
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}
