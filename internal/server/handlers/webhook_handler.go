package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/domain/models"
	service "github.com/mamadbah2/fishprofit/internal/service/whatsapp"
)

// MonthReporter renders the month summary sent when an operator posts an empty message.
type MonthReporter interface {
	MonthSummary() string
}

// WebhookHandler exposes the WhatsApp command channel over HTTP.
type WebhookHandler struct {
	svc     service.MessagingService
	reports MonthReporter
	logger  *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter. reports may be nil,
// in which case /send-message requires a message.
func NewWebhookHandler(svc service.MessagingService, reports MonthReporter, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, reports: reports, logger: logger}
}

// Verify answers Meta's subscription handshake by echoing hub.challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	challenge := c.Query("hub.challenge")
	if challenge == "" {
		c.String(http.StatusBadRequest, "missing hub.challenge")
		return
	}

	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), challenge)
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive runs the batch commands carried by a callback.
// Answers 200 whenever the payload parses, since Meta redelivers anything
// else and a redelivered /sale would be recorded twice.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed processing webhook", zap.Error(err), zap.Int("messages", len(payload.Messages())))
	}

	c.Status(http.StatusOK)
}

// SendMessage pushes a message to a WhatsApp number, the owner's by default.
// Without a message it sends the current month summary.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" && h.reports != nil {
		req.Message = h.reports.MonthSummary()
	}

	err := h.svc.SendOutbound(c.Request.Context(), req)
	switch {
	case errors.Is(err, service.ErrNoRecipient), errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
	default:
		c.Status(http.StatusAccepted)
	}
}
