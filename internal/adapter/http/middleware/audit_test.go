package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func adminRouter(auditSvc ports.AuditService, status int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CtxSubject, "ops-7")
		c.Set(CtxRole, ports.RoleAdmin)
	})
	r.Use(AuditLog(auditSvc))
	reply := func(c *gin.Context) { c.JSON(status, gin.H{"ok": status < 300}) }
	r.POST("/api/v1/admin/withdraws/:id/resolve", reply)
	r.GET("/api/v1/admin/transactions/:id", reply)
	r.GET("/api/v1/admin/payment-methods", reply)
	return r
}

func TestAuditLog_ResolveRecorded(t *testing.T) {
	auditSvc := mocks.NewMockAuditService(gomock.NewController(t))
	auditSvc.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e ports.AuditEntry) {
		assert.Equal(t, "admin:ops-7", e.ActorID)
		assert.Equal(t, domain.AuditActionResolve, e.Action)
		assert.Equal(t, "transaction", e.ResourceType)
		assert.Equal(t, "8f9c", e.ResourceID)
		assert.Equal(t, http.StatusOK, e.Details["status"])
	})

	w := httptest.NewRecorder()
	adminRouter(auditSvc, http.StatusOK).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/withdraws/8f9c/resolve", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_AccountSearchRecorded(t *testing.T) {
	auditSvc := mocks.NewMockAuditService(gomock.NewController(t))
	auditSvc.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e ports.AuditEntry) {
		assert.Equal(t, domain.AuditActionSearchAccount, e.Action)
		assert.Empty(t, e.ResourceID)
	})

	w := httptest.NewRecorder()
	adminRouter(auditSvc, http.StatusOK).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/payment-methods?account_number=1234", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_SkipsUnmappedReads(t *testing.T) {
	// No expectations: Log must not be called.
	auditSvc := mocks.NewMockAuditService(gomock.NewController(t))

	w := httptest.NewRecorder()
	adminRouter(auditSvc, http.StatusOK).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/transactions/8f9c", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_SkipsFailedRequests(t *testing.T) {
	auditSvc := mocks.NewMockAuditService(gomock.NewController(t))

	w := httptest.NewRecorder()
	adminRouter(auditSvc, http.StatusConflict).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/withdraws/8f9c/resolve", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuditedRoutes(t *testing.T) {
	tests := []struct {
		path     string
		action   domain.AuditAction
		resource string
	}{
		{"/api/v1/admin/withdraws/:id/retry", domain.AuditActionRetry, "transaction"},
		{"/api/v1/admin/withdraws/:id/refund", domain.AuditActionRefund, "transaction"},
		{"/api/v1/admin/deposits/:id/retry-credit", domain.AuditActionRetryCredit, "transaction"},
		{"/api/v1/admin/transactions/:id/acknowledge", domain.AuditActionAcknowledge, "transaction"},
		{"/api/v1/admin/attempts/:id/refresh", domain.AuditActionRefresh, "attempt"},
		{"/api/v1/admin/transactions/refresh", domain.AuditActionBulkRefresh, "transaction"},
		{"/api/v1/admin/trading-accounts", domain.AuditActionOpenAccount, "trading_account"},
	}
	for _, tc := range tests {
		route, ok := auditedRoutes[tc.path]
		if assert.True(t, ok, tc.path) {
			assert.Equal(t, tc.action, route.action, tc.path)
			assert.Equal(t, tc.resource, route.resource, tc.path)
		}
	}
	_, ok := auditedRoutes["/api/v1/admin/transactions"]
	assert.False(t, ok)
}
