package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/Naim3097/BOOX/internal/leanx"
	"github.com/Naim3097/BOOX/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives the gateway's payment notifications. It always
// answers with a JSON body so the gateway can log the outcome.
type WebhookHandler struct {
	service booking.BookingUseCase
	secret  string
	logger  *zap.Logger
}

type webhookResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

func NewWebhookHandler(service booking.BookingUseCase, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, secret: secret, logger: logger}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/payment-webhook", h.receive)
}

func (h *WebhookHandler) receive(c *gin.Context) {
	if !h.authorized(c.Query("token")) {
		h.logger.Warn("webhook rejected: bad token", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var payload leanx.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("webhook rejected: malformed body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	h.logger.Info("received webhook",
		zap.String("invoice_no", payload.InvoiceNo),
		zap.String("status", payload.InvoiceStatus),
		zap.String("amount", string(payload.Amount)),
	)

	res, err := h.service.ApplyPaymentNotification(c.Request.Context(), notificationFrom(payload))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, webhookResponse{
		Success:   true,
		Message:   "Webhook processed successfully",
		BookingID: res.BookingID,
		Status:    string(res.Status),
	})
}

func (h *WebhookHandler) authorized(token string) bool {
	if h.secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

func notificationFrom(p leanx.WebhookPayload) domain.PaymentNotification {
	return domain.PaymentNotification{
		InvoiceNo:     p.InvoiceNo,
		InvoiceStatus: p.InvoiceStatus,
		Amount:        p.Amount.Float64(),
		Provider:      p.BankProvider,
		Method:        p.ProviderType,
		TransactionID: p.FPXInvoiceNo,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		CustomerPhone: p.CustomerPhone,
	}
}
