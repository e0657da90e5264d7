package booking

import (
	"context"
	"strings"
	"time"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/Naim3097/BOOX/internal/kafka"
	"github.com/Naim3097/BOOX/internal/repository"
	"github.com/Naim3097/BOOX/internal/service/payment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ApplyPaymentNotification(ctx context.Context, n domain.PaymentNotification) (*WebhookResult, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Deduplicator reports whether a webhook delivery is new.
type Deduplicator interface {
	MarkNotification(ctx context.Context, invoiceNo, status string, ttl time.Duration) (bool, error)
}

type CreateBookingInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	VehicleBrand     string `json:"vehicleBrand"`
	VehicleModel     string `json:"vehicleModel"`
	VehicleYear      string `json:"vehicleYear"`
	TransmissionType string `json:"transmissionType"`
	Issues           string `json:"issues"`
	Date             string `json:"date"`
	TimeSlot         string `json:"timeSlot"`
}

type WebhookResult struct {
	BookingID string
	Status    domain.BookingStatus
}

type BookingService struct {
	bookings           repository.BookingRepository
	producer           Producer
	dedup              Deduplicator
	dedupTTL           time.Duration
	paymentsTopic      string
	notificationsTopic string
	logger             *zap.Logger
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithDeduplicator(d Deduplicator, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.dedup = d
		s.dedupTTL = ttl
	}
}

func WithLogger(l *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = l
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	producer Producer,
	paymentsTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:      bookings,
		producer:      producer,
		paymentsTopic: paymentsTopic,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking stores a booking in pending_payment. The caller then opens a
// payment session for the booking's invoice reference.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := validateBooking(input); err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(input.Date))
	if err != nil {
		return nil, domain.NewValidationError("Invalid date. Expected YYYY-MM-DD")
	}

	booking := &domain.Booking{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(input.Name),
		Email:            strings.TrimSpace(input.Email),
		Phone:            payment.NormalizePhone(input.Phone),
		Address:          strings.TrimSpace(input.Address),
		VehicleBrand:     strings.TrimSpace(input.VehicleBrand),
		VehicleModel:     strings.TrimSpace(input.VehicleModel),
		VehicleYear:      strings.TrimSpace(input.VehicleYear),
		TransmissionType: strings.TrimSpace(input.TransmissionType),
		Issues:           strings.TrimSpace(input.Issues),
		Date:             date,
		TimeSlot:         input.TimeSlot,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.logger.Error("create booking failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("invoice_no", booking.InvoiceRef()),
	)
	if err := s.publish(ctx, kafka.EventBookingCreated, booking); err != nil {
		s.logger.Warn("failed to publish booking event", zap.String("booking_id", booking.ID), zap.Error(err))
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.NotFoundError{Resource: "booking", ID: id}
	}
	return s.bookings.GetByID(ctx, id)
}

// ApplyPaymentNotification records a gateway delivery against its booking.
// Redelivering the same notification leaves the booking as it was. An event
// is published only when the delivery set the stored status, once per status.
func (s *BookingService) ApplyPaymentNotification(ctx context.Context, n domain.PaymentNotification) (*WebhookResult, error) {
	n.InvoiceNo = strings.TrimSpace(n.InvoiceNo)
	n.InvoiceStatus = strings.TrimSpace(n.InvoiceStatus)
	if n.InvoiceNo == "" || n.InvoiceStatus == "" {
		return nil, domain.NewValidationError("Invalid payload")
	}

	log := s.logger.With(zap.String("invoice_no", n.InvoiceNo), zap.String("status", n.InvoiceStatus))

	id, ok := domain.BookingIDFromInvoice(n.InvoiceNo)
	if !ok {
		log.Warn("webhook for invoice not issued by us")
		return nil, &domain.NotFoundError{Resource: "booking", ID: n.InvoiceNo}
	}
	if _, err := uuid.Parse(id); err != nil {
		log.Warn("webhook for malformed booking id")
		return nil, &domain.NotFoundError{Resource: "booking", ID: id}
	}

	target := domain.BookingStatusForInvoice(n.InvoiceStatus)
	booking, err := s.bookings.ApplyPayment(ctx, id, target, n.Facts(s.now().UTC()))
	if err != nil {
		log.Error("apply payment failed", zap.String("booking_id", id), zap.Error(err))
		return nil, err
	}

	log.Info("payment notification applied",
		zap.String("booking_id", id),
		zap.String("booking_status", string(booking.Status)),
	)

	// A stale or frozen delivery leaves the stored status elsewhere; only the
	// delivery that set the status announces it.
	if booking.Status != target {
		log.Info("payment notification did not change booking", zap.String("booking_status", string(booking.Status)))
	} else if s.firstDelivery(ctx, n.InvoiceNo, booking.Status) {
		if eventType, ok := eventFor(booking.Status); ok {
			if err := s.publish(ctx, eventType, booking); err != nil {
				log.Warn("failed to publish payment event", zap.Error(err))
			}
		}
	}

	return &WebhookResult{BookingID: booking.ID, Status: booking.Status}, nil
}

// firstDelivery is keyed on the stored booking status, so a different gateway
// status mapping to the same booking status is still a duplicate.
func (s *BookingService) firstDelivery(ctx context.Context, invoiceNo string, status domain.BookingStatus) bool {
	if s.dedup == nil {
		return true
	}
	first, err := s.dedup.MarkNotification(ctx, invoiceNo, string(status), s.dedupTTL)
	if err != nil {
		s.logger.Warn("webhook dedup unavailable", zap.String("invoice_no", invoiceNo), zap.Error(err))
		return true
	}
	return first
}

func eventFor(status domain.BookingStatus) (string, bool) {
	switch status {
	case domain.BookingStatusConfirmed:
		return kafka.EventPaymentConfirmed, true
	case domain.BookingStatusCancelled:
		return kafka.EventPaymentCancelled, true
	case domain.BookingStatusPending:
		return kafka.EventPaymentPending, true
	}
	return "", false
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.paymentsTopic == "" {
		return nil
	}
	event := kafka.PaymentEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		InvoiceNo:     booking.InvoiceRef(),
		Status:        string(booking.Status),
		PaymentStatus: booking.Payment.Status,
		Amount:        booking.Payment.Amount,
		Email:         booking.Email,
		Name:          booking.Name,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.paymentsTopic, booking.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" && eventType != kafka.EventBookingCreated {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
