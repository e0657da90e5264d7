package api

import (
	"net/http"
	"time"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/Naim3097/BOOX/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service       booking.BookingUseCase
	depositAmount float64
	logger        *zap.Logger
}

type bookingResponse struct {
	ID               string           `json:"id"`
	InvoiceRef       string           `json:"invoiceRef"`
	Status           string           `json:"status"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Address          string           `json:"address"`
	VehicleBrand     string           `json:"vehicleBrand"`
	VehicleModel     string           `json:"vehicleModel"`
	VehicleYear      string           `json:"vehicleYear"`
	TransmissionType string           `json:"transmissionType"`
	Issues           string           `json:"issues"`
	Date             string           `json:"date"`
	TimeSlot         string           `json:"timeSlot"`
	Payment          *paymentResponse `json:"payment,omitempty"`
	CreatedAt        string           `json:"createdAt"`
}

type paymentResponse struct {
	Status        string  `json:"paymentStatus"`
	InvoiceNo     string  `json:"paymentInvoiceNo,omitempty"`
	Amount        float64 `json:"paymentAmount"`
	Provider      string  `json:"paymentProvider,omitempty"`
	Method        string  `json:"paymentMethod,omitempty"`
	TransactionID *string `json:"paymentTransactionId"`
	UpdatedAt     *string `json:"paymentUpdatedAt"`
}

func NewBookingHandler(service booking.BookingUseCase, depositAmount float64, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, depositAmount: depositAmount, logger: logger}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	bookingsCORS := CORS("GET,POST,OPTIONS")
	router.OPTIONS("/bookings", bookingsCORS)
	router.POST("/bookings", bookingsCORS, h.create)
	router.GET("/bookings/:id", bookingsCORS, h.get)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"bookingId":     b.ID,
		"invoiceRef":    b.InvoiceRef(),
		"depositAmount": h.depositAmount,
		"booking":       toBookingResponse(b),
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:               b.ID,
		InvoiceRef:       b.InvoiceRef(),
		Status:           string(b.Status),
		Name:             b.Name,
		Email:            b.Email,
		Phone:            b.Phone,
		Address:          b.Address,
		VehicleBrand:     b.VehicleBrand,
		VehicleModel:     b.VehicleModel,
		VehicleYear:      b.VehicleYear,
		TransmissionType: b.TransmissionType,
		Issues:           b.Issues,
		Date:             b.Date.Format("2006-01-02"),
		TimeSlot:         b.TimeSlot,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
	if b.Payment.Status != "" {
		p := &paymentResponse{
			Status:        b.Payment.Status,
			InvoiceNo:     b.Payment.InvoiceNo,
			Amount:        b.Payment.Amount,
			Provider:      b.Payment.Provider,
			Method:        b.Payment.Method,
			TransactionID: b.Payment.TransactionID,
		}
		if b.Payment.UpdatedAt != nil {
			ts := b.Payment.UpdatedAt.Format(time.RFC3339)
			p.UpdatedAt = &ts
		}
		resp.Payment = p
	}
	return resp
}
