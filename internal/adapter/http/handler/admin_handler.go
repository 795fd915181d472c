package handler

import (
	"fundflow/internal/adapter/http/dto"
	"fundflow/internal/adapter/http/middleware"
	"fundflow/internal/core/ports"
	"fundflow/pkg/apperror"
	"fundflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves the operator endpoints. Every mutation is recorded against
// the admin identity carried by the bearer token.
type AdminHandler struct {
	recon    ports.ReconciliationService
	status   ports.StatusService
	query    ports.QueryService
	accounts ports.AccountService
}

func NewAdminHandler(recon ports.ReconciliationService, status ports.StatusService, query ports.QueryService, accounts ports.AccountService) *AdminHandler {
	return &AdminHandler{recon: recon, status: status, query: query, accounts: accounts}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// ListTransactions handles GET /api/v1/admin/transactions.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	listTransactions(c, h.query, params)
}

// GetTransaction handles GET /api/v1/admin/transactions/:id.
func (h *AdminHandler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.query.GetTransactionDetail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.TransactionDetailResponse{
		Transaction: toTransactionResponse(detail.Transaction),
		Attempts:    detail.Attempts,
		History:     detail.History,
	})
}

// Resolve handles POST /api/v1/admin/withdraws/:id/resolve.
func (h *AdminHandler) Resolve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	tx, err := h.recon.Resolve(c.Request.Context(), ports.ResolveRequest{
		ID:       id,
		Decision: ports.Decision(req.Decision),
		Reason:   req.Reason,
		Actor:    middleware.Actor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondTransaction(c, tx)
}

// Retry handles POST /api/v1/admin/withdraws/:id/retry.
func (h *AdminHandler) Retry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tx, err := h.recon.Retry(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondTransaction(c, tx)
}

// Refund handles POST /api/v1/admin/withdraws/:id/refund.
func (h *AdminHandler) Refund(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.recon.Refund(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := dto.RefundResponse{Withdraw: toTransactionResponse(res.Withdraw)}
	if res.Deposit == nil {
		response.OK(c, out)
		return
	}
	dep := toTransactionResponse(res.Deposit)
	out.Deposit = &dep
	if unconfirmed(res.Deposit) {
		response.Accepted(c, out)
		return
	}
	response.OK(c, out)
}

// RetryCredit handles POST /api/v1/admin/deposits/:id/retry-credit.
func (h *AdminHandler) RetryCredit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tx, err := h.recon.RetryCredit(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondTransaction(c, tx)
}

// Acknowledge handles POST /api/v1/admin/transactions/:id/acknowledge.
func (h *AdminHandler) Acknowledge(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	tx, err := h.recon.Acknowledge(c.Request.Context(), id, req.Reason, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponse(tx))
}

// RefreshTransaction handles POST /api/v1/admin/transactions/:id/refresh.
func (h *AdminHandler) RefreshTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.status.RefreshTransaction(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// RefreshAttempt handles POST /api/v1/admin/attempts/:id/refresh. Only the attempt row is updated.
func (h *AdminHandler) RefreshAttempt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.status.RefreshAttempt(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// BulkRefresh handles POST /api/v1/admin/transactions/refresh.
func (h *AdminHandler) BulkRefresh(c *gin.Context) {
	var req dto.BulkRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	seen := make(map[uuid.UUID]struct{}, len(req.IDs))
	for _, raw := range req.IDs {
		id := uuid.MustParse(raw)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	response.OK(c, h.status.BulkRefresh(c.Request.Context(), ids, middleware.Actor(c)))
}

// SearchPaymentMethods handles GET /api/v1/admin/payment-methods?account_number=.
func (h *AdminHandler) SearchPaymentMethods(c *gin.Context) {
	methods, err := h.accounts.SearchByAccountNumber(c.Request.Context(), c.Query("account_number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		details, err := h.accounts.PaymentDetails(c.Request.Context(), m.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		items = append(items, dto.PaymentMethodResponse{
			ID:         m.ID.String(),
			CustomerID: m.CustomerID.String(),
			Details:    details.Masked(),
			CreatedAt:  formatTime(m.CreatedAt),
		})
	}
	response.OK(c, items)
}

// GatewayBalance handles GET /api/v1/admin/gateways/:id/balance.
func (h *AdminHandler) GatewayBalance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	balance, err := h.query.GatewayBalance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{GatewayID: id.String(), Balance: balance})
}

// OpenTradingAccount handles POST /api/v1/admin/trading-accounts.
// The generated credentials are only ever returned by this call.
func (h *AdminHandler) OpenTradingAccount(c *gin.Context) {
	var req dto.OpenTradingAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	res, err := h.accounts.OpenTradingAccount(c.Request.Context(), ports.OpenAccountRequest{
		CustomerID: uuid.MustParse(req.CustomerID),
		Name:       req.Name,
		Email:      req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	response.Created(c, res)
}
