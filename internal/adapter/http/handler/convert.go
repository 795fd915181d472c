package handler

import (
	"time"

	"fundflow/internal/adapter/http/dto"
	"fundflow/internal/core/domain"
	"fundflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:                  tx.ID.String(),
		Kind:                string(tx.Kind),
		Type:                string(tx.Type),
		CustomerID:          tx.CustomerID.String(),
		TradingAccountID:    tx.TradingAccountID.String(),
		PaymentMethodID:     optionalID(tx.PaymentMethodID),
		RefundTransactionID: optionalID(tx.RefundTransactionID),
		Amount:              tx.Amount,
		Currency:            tx.Currency,
		Status:              string(tx.Status),
		TradingStatus:       string(tx.TradingStatus),
		GatewayStatus:       string(tx.GatewayStatus),
		GatewayID:           optionalID(tx.GatewayID),
		GatewayReference:    tx.GatewayReference,
		GatewayMethod:       tx.GatewayMethod,
		InFlight:            tx.InFlight,
		FailCount:           tx.FailCount,
		Message:             tx.MessageText(),
		CreatedBy:           tx.CreatedBy,
		CreatedAt:           formatTime(tx.CreatedAt),
		UpdatedAt:           formatTime(tx.UpdatedAt),
	}
	if tx.GatewayOrderID != nil {
		resp.OrderID = *tx.GatewayOrderID
	}
	if tx.ProcessedAt != nil {
		s := formatTime(*tx.ProcessedAt)
		resp.ProcessedAt = &s
	}
	return resp
}

// unconfirmed reports whether the last external call could not be confirmed either way.
func unconfirmed(tx *domain.Transaction) bool {
	switch tx.MessageText() {
	case domain.MessageGatewayUnconfirmed, domain.MessageTradingUnconfirmed:
		return true
	}
	return false
}

// respondTransaction answers 202 while an outbound call is unconfirmed, 200 otherwise.
func respondTransaction(c *gin.Context, tx *domain.Transaction) {
	if unconfirmed(tx) {
		response.Accepted(c, toTransactionResponse(tx))
		return
	}
	response.OK(c, toTransactionResponse(tx))
}
