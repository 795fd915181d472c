package handler

import (
	"math"
	"strconv"

	"fundflow/internal/adapter/http/dto"
	"fundflow/internal/adapter/http/middleware"
	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/pkg/apperror"
	"fundflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerHandler serves the customer-facing deposit and withdraw endpoints.
type CustomerHandler struct {
	recon    ports.ReconciliationService
	accounts ports.AccountService
	query    ports.QueryService
}

func NewCustomerHandler(recon ports.ReconciliationService, accounts ports.AccountService, query ports.QueryService) *CustomerHandler {
	return &CustomerHandler{recon: recon, accounts: accounts, query: query}
}

// CreateDeposit handles POST /api/v1/deposits.
func (h *CustomerHandler) CreateDeposit(c *gin.Context) {
	customerID, err := middleware.CustomerID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	res, err := h.recon.CreateDeposit(c.Request.Context(), ports.CreateDepositRequest{
		CustomerID:       customerID,
		TradingAccountID: uuid.MustParse(req.TradingAccountID),
		Amount:           req.Amount,
		Currency:         req.Currency,
		Actor:            middleware.Actor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.DepositResponse{
		Transaction: toTransactionResponse(res.Transaction),
		PaymentURL:  res.PaymentURL,
	})
}

// CreateWithdraw handles POST /api/v1/withdraws.
func (h *CustomerHandler) CreateWithdraw(c *gin.Context) {
	customerID, err := middleware.CustomerID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	tx, err := h.recon.CreateWithdraw(c.Request.Context(), ports.CreateWithdrawRequest{
		CustomerID:       customerID,
		TradingAccountID: uuid.MustParse(req.TradingAccountID),
		PaymentMethodID:  uuid.MustParse(req.PaymentMethodID),
		Amount:           req.Amount,
		Currency:         req.Currency,
		Actor:            middleware.Actor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(tx))
}

// AddPaymentMethod handles POST /api/v1/payment-methods.
func (h *CustomerHandler) AddPaymentMethod(c *gin.Context) {
	customerID, err := middleware.CustomerID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AddPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	details := domain.PaymentDetails{
		Kind:          domain.PaymentMethodKind(req.Kind),
		HolderName:    req.HolderName,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		VPA:           req.VPA,
	}
	m, err := h.accounts.AddPaymentMethod(c.Request.Context(), customerID, details)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.PaymentMethodResponse{
		ID:         m.ID.String(),
		CustomerID: m.CustomerID.String(),
		Details:    details.Masked(),
		CreatedAt:  formatTime(m.CreatedAt),
	})
}

// ListTransactions handles GET /api/v1/transactions, scoped to the caller.
func (h *CustomerHandler) ListTransactions(c *gin.Context) {
	customerID, err := middleware.CustomerID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params, err := listParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params.CustomerID = &customerID
	listTransactions(c, h.query, params)
}

// listParams parses the shared transaction list filters.
func listParams(c *gin.Context) (ports.TransactionListParams, error) {
	var params ports.TransactionListParams
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if k := c.Query("kind"); k != "" {
		kind := domain.Kind(k)
		if kind != domain.KindDeposit && kind != domain.KindWithdraw {
			return params, apperror.Validation("kind must be DEPOSIT or WITHDRAW")
		}
		params.Kind = &kind
	}
	for _, f := range []struct {
		key string
		dst **domain.Status
	}{
		{"status", &params.Status},
		{"trading_status", &params.TradingStatus},
		{"gateway_status", &params.GatewayStatus},
	} {
		v := c.Query(f.key)
		if v == "" {
			continue
		}
		s := domain.Status(v)
		if !s.Valid() {
			return params, apperror.Validation("invalid " + f.key)
		}
		*f.dst = &s
	}
	if v := c.Query("in_flight"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return params, apperror.Validation("in_flight must be a boolean")
		}
		params.InFlight = &b
	}
	return params, nil
}

func listTransactions(c *gin.Context, query ports.QueryService, params ports.TransactionListParams) {
	txns, total, err := query.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	page, pageSize := params.Page, params.PageSize
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = 20
	case pageSize > 100:
		pageSize = 100
	}
	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	})
}
