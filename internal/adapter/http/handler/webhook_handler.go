package handler

import (
	"io"

	"fundflow/internal/core/ports"
	"fundflow/pkg/apperror"
	"fundflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler receives provider callbacks. Providers only ever see 200 or 400.
type WebhookHandler struct {
	svc ports.WebhookService
	log zerolog.Logger
}

func NewWebhookHandler(svc ports.WebhookService, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, log: log}
}

// Handle handles POST /webhooks/:provider. The raw body is passed through
// untouched because signatures are computed over it.
func (h *WebhookHandler) Handle(c *gin.Context) {
	provider := c.Param("provider")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.WebhookError(c, apperror.Validation("unreadable request body"))
		return
	}

	res, err := h.svc.Handle(c.Request.Context(), provider, c.Request.Header, body)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", provider).Msg("webhook rejected")
		response.WebhookError(c, err)
		return
	}
	response.WebhookOK(c, res.Status, res.Message)
}
