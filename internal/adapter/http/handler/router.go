package handler

import (
	"fundflow/internal/adapter/http/middleware"
	"fundflow/internal/core/ports"
	"fundflow/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ReconSvc       ports.ReconciliationService
	StatusSvc      ports.StatusService
	QuerySvc       ports.QueryService
	AccountSvc     ports.AccountService
	WebhookSvc     ports.WebhookService
	TokenSvc       ports.TokenService
	AuditSvc       ports.AuditService // nil = audit logging disabled
	RateLimitStore middleware.Counter // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Provider callbacks (authenticated by signature or status re-query) ---
	webhookHandler := NewWebhookHandler(deps.WebhookSvc, deps.Logger)
	r.POST("/webhooks/:provider", rl("webhooks"), webhookHandler.Handle)

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1")

	// --- Customer routes ---
	customerHandler := NewCustomerHandler(deps.ReconSvc, deps.AccountSvc, deps.QuerySvc)
	customer := v1.Group("", jwtAuth, middleware.RequireRole(ports.RoleCustomer), rl("customer"))
	{
		customer.POST("/deposits", customerHandler.CreateDeposit)
		customer.POST("/withdraws", customerHandler.CreateWithdraw)
		customer.POST("/payment-methods", customerHandler.AddPaymentMethod)
		customer.GET("/transactions", customerHandler.ListTransactions)
	}

	// --- Admin routes ---
	adminHandler := NewAdminHandler(deps.ReconSvc, deps.StatusSvc, deps.QuerySvc, deps.AccountSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.RequireRole(ports.RoleAdmin), rl("admin"))
	if deps.AuditSvc != nil {
		admin.Use(middleware.AuditLog(deps.AuditSvc))
	}
	{
		admin.GET("/transactions", adminHandler.ListTransactions)
		admin.GET("/transactions/:id", adminHandler.GetTransaction)
		admin.POST("/transactions/:id/acknowledge", adminHandler.Acknowledge)
		admin.POST("/transactions/:id/refresh", adminHandler.RefreshTransaction)
		admin.POST("/transactions/refresh", rl("refresh"), adminHandler.BulkRefresh)
		admin.POST("/attempts/:id/refresh", adminHandler.RefreshAttempt)

		admin.POST("/withdraws/:id/resolve", adminHandler.Resolve)
		admin.POST("/withdraws/:id/retry", adminHandler.Retry)
		admin.POST("/withdraws/:id/refund", adminHandler.Refund)
		admin.POST("/deposits/:id/retry-credit", adminHandler.RetryCredit)

		admin.GET("/payment-methods", adminHandler.SearchPaymentMethods)
		admin.GET("/gateways/:id/balance", adminHandler.GatewayBalance)
		admin.POST("/trading-accounts", adminHandler.OpenTradingAccount)
	}

	return r
}
