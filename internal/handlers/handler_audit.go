package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/fintaxcl/tax_events_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// auditHandler handles HTTP requests for the audit trail query surface.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers the audit trail listing route, restricted
// to the roles that review the trail.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	rg.GET("/audit-logs", middleware.RequireRoles(domain.RoleAuditor, domain.RoleTaxAnalyst), h.listAuditRecords)
}

// validAuditActions guards the action filter so typos surface as 400s
// instead of silently empty pages.
var validAuditActions = map[domain.AuditAction]bool{
	domain.ActionCreate: true,
	domain.ActionUpdate: true,
	domain.ActionDelete: true,
	domain.ActionLogin:  true,
}

// listAuditRecords godoc
// @Summary List audit records
// @Description Lists the audit trail newest first, filterable by actor username substring, action kind and timestamp range. Paginated by opaque token.
// @Tags audit
// @Produce  json
// @Param   username query string false "Actor username substring filter"
// @Param   action query string false "Action filter (CREATE, UPDATE, DELETE, LOGIN)"
// @Param   from query string false "Lower timestamp bound (RFC 3339)"
// @Param   to query string false "Upper timestamp bound (RFC 3339)"
// @Param   limit query int false "Page size (default 50, max 200)"
// @Param   nextToken query string false "Opaque token from a previous page"
// @Success 200 {object} dto.ListAuditRecordsResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Requires the internal-auditor or tax-analyst role"
// @Failure 500 {object} ErrorResponse "Failed to list audit records"
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *auditHandler) listAuditRecords(c *gin.Context) {
	filter := portsrepo.AuditFilter{
		Username: c.Query("username"),
	}

	if raw := c.Query("action"); raw != "" {
		action := domain.AuditAction(raw)
		if !validAuditActions[action] {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "action must be one of CREATE, UPDATE, DELETE, LOGIN"})
			return
		}
		filter.Action = action
	}
	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from must be an RFC 3339 timestamp"})
			return
		}
		filter.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "to must be an RFC 3339 timestamp"})
			return
		}
		filter.To = &ts
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	records, nextToken, err := h.auditService.ListAuditRecords(c.Request.Context(), filter, limit, c.Query("nextToken"))
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list audit records", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list audit records"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAuditRecordsResponse(records, nextToken))
}
