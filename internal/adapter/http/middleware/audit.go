package middleware

import (
	"net/http"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type auditRoute struct {
	action   domain.AuditAction
	resource string
}

// auditedRoutes maps admin route patterns to audit actions.
var auditedRoutes = map[string]auditRoute{
	"/api/v1/admin/withdraws/:id/resolve":        {domain.AuditActionResolve, "transaction"},
	"/api/v1/admin/withdraws/:id/retry":          {domain.AuditActionRetry, "transaction"},
	"/api/v1/admin/withdraws/:id/refund":         {domain.AuditActionRefund, "transaction"},
	"/api/v1/admin/deposits/:id/retry-credit":    {domain.AuditActionRetryCredit, "transaction"},
	"/api/v1/admin/transactions/:id/acknowledge": {domain.AuditActionAcknowledge, "transaction"},
	"/api/v1/admin/transactions/:id/refresh":     {domain.AuditActionRefresh, "transaction"},
	"/api/v1/admin/attempts/:id/refresh":         {domain.AuditActionRefresh, "attempt"},
	"/api/v1/admin/transactions/refresh":         {domain.AuditActionBulkRefresh, "transaction"},
	"/api/v1/admin/trading-accounts":             {domain.AuditActionOpenAccount, "trading_account"},
	"/api/v1/admin/payment-methods":              {domain.AuditActionSearchAccount, "payment_method"},
}

// AuditLog records admin actions that completed with a 2xx status.
// Account searches are audited even though they are reads.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < http.StatusOK || c.Writer.Status() >= http.StatusMultipleChoices {
			return
		}
		route, ok := auditedRoutes[c.FullPath()]
		if !ok {
			return
		}

		auditSvc.Log(c.Request.Context(), ports.AuditEntry{
			ActorID:      Actor(c),
			Action:       route.action,
			ResourceType: route.resource,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			Details: map[string]interface{}{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     c.Writer.Status(),
				"request_id": c.GetString(CtxRequestID),
			},
		})
	}
}
