package api

import (
	"net/http"

	"github.com/Naim3097/BOOX/internal/service/payment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
	limiter *RateLimiter
	logger  *zap.Logger
}

type createPaymentResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl"`
	BillNo      string `json:"billNo"`
	InvoiceRef  string `json:"invoiceRef"`
}

func NewPaymentHandler(service payment.PaymentUseCase, limiter *RateLimiter, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, limiter: limiter, logger: logger}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	createCORS := CORS("POST,OPTIONS")
	router.OPTIONS("/create-payment", createCORS)
	if h.limiter != nil {
		router.POST("/create-payment", createCORS, h.limiter.Middleware(), h.createPayment)
	} else {
		router.POST("/create-payment", createCORS, h.createPayment)
	}

	statusCORS := CORS("GET,OPTIONS")
	router.OPTIONS("/check-payment-status", statusCORS)
	router.GET("/check-payment-status", statusCORS, h.checkStatus)
}

func (h *PaymentHandler) createPayment(c *gin.Context) {
	var req payment.CreatePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.BaseURL = requestBaseURL(c.Request)

	bill, err := h.service.CreatePayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, createPaymentResponse{
		Success:     true,
		RedirectURL: bill.RedirectURL,
		BillNo:      bill.BillNo,
		InvoiceRef:  bill.InvoiceRef,
	})
}

func (h *PaymentHandler) checkStatus(c *gin.Context) {
	view, err := h.service.CheckStatus(c.Request.Context(), c.Query("invoiceNo"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": view,
		"customer":    view.Customer,
	})
}
