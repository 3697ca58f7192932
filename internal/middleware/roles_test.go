package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/fintaxcl/tax_events_app/internal/middleware"
	"github.com/fintaxcl/tax_events_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

// newGuardedRouter mounts the upload and audit guards the way the route
// registrations do.
func newGuardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret))
	r.POST("/upload", middleware.RequireRoles(domain.RoleStockBroker, domain.RoleTaxAnalyst), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/audit-logs", middleware.RequireRoles(domain.RoleAuditor, domain.RoleTaxAnalyst), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT("user-1", role, testSecret, time.Hour, "tax-events-test")
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRoles_UploadMatrix(t *testing.T) {
	r := newGuardedRouter()

	t.Run("broker allowed", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/upload", signToken(t, string(domain.RoleStockBroker)))
		assert.Equal(t, http.StatusOK, w.Code)
	})
	t.Run("analyst allowed", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/upload", signToken(t, string(domain.RoleTaxAnalyst)))
		assert.Equal(t, http.StatusOK, w.Code)
	})
	t.Run("auditor denied", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/upload", signToken(t, string(domain.RoleAuditor)))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequireRoles_AuditMatrix(t *testing.T) {
	r := newGuardedRouter()

	t.Run("auditor allowed", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/audit-logs", signToken(t, string(domain.RoleAuditor)))
		assert.Equal(t, http.StatusOK, w.Code)
	})
	t.Run("analyst allowed", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/audit-logs", signToken(t, string(domain.RoleTaxAnalyst)))
		assert.Equal(t, http.StatusOK, w.Code)
	})
	t.Run("broker denied", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/audit-logs", signToken(t, string(domain.RoleStockBroker)))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequireRoles_TokenWithoutRoleIsForbidden(t *testing.T) {
	r := newGuardedRouter()

	w := doRequest(r, http.MethodPost, "/upload", signToken(t, ""))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
