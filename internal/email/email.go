package email

import (
	"context"
	"fmt"

	"github.com/Naim3097/BOOX/internal/kafka"
	"go.uber.org/zap"
)

// Message is a rendered customer notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

// Send delivers the notification for a payment event. Delivery is a log line
// until an SMTP relay is configured.
func (s *Sender) Send(ctx context.Context, event kafka.PaymentEvent) error {
	msg, ok := Render(event)
	if !ok {
		s.logger.Debug("no notification for event", zap.String("type", event.Type), zap.String("booking_id", event.BookingID))
		return nil
	}
	s.logger.Info("send email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("booking_id", event.BookingID),
		zap.String("invoice_no", event.InvoiceNo),
	)
	return nil
}

// Render builds the message for an event. ok is false when the event needs
// no customer notification.
func Render(event kafka.PaymentEvent) (Message, bool) {
	if event.Email == "" {
		return Message{}, false
	}
	name := event.Name
	if name == "" {
		name = "there"
	}

	switch event.Type {
	case kafka.EventPaymentConfirmed:
		return Message{
			To:      event.Email,
			Subject: "Your inspection booking is confirmed",
			Body: fmt.Sprintf("Hi %s,\n\nWe received your deposit of RM%.2f (invoice %s). Your inspection booking is confirmed.\n",
				name, event.Amount, event.InvoiceNo),
		}, true
	case kafka.EventPaymentCancelled:
		return Message{
			To:      event.Email,
			Subject: "Your payment was not completed",
			Body: fmt.Sprintf("Hi %s,\n\nThe payment for invoice %s was not completed (%s). You can book again at any time.\n",
				name, event.InvoiceNo, event.PaymentStatus),
		}, true
	}
	return Message{}, false
}
