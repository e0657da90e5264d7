package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusPending        BookingStatus = "pending"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusCompleted      BookingStatus = "completed"
	BookingStatusCancelled      BookingStatus = "cancelled"
)

// Settled reports whether the status is a final payment outcome or a later
// admin state.
func (s BookingStatus) Settled() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// InvoicePrefix joins a booking to its gateway bill.
const InvoicePrefix = "BOOKING-"

// TimeSlots are the inspection windows offered to customers.
var TimeSlots = []string{
	"08:00 AM - 10:00 AM",
	"10:00 AM - 12:00 PM",
	"01:00 PM - 03:00 PM",
	"03:00 PM - 05:00 PM",
}

func ValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

type Booking struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	Address          string
	VehicleBrand     string
	VehicleModel     string
	VehicleYear      string
	TransmissionType string
	Issues           string
	Date             time.Time
	TimeSlot         string
	Status           BookingStatus
	Payment          PaymentFacts
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (b *Booking) InvoiceRef() string {
	return InvoiceRefFor(b.ID)
}

func InvoiceRefFor(bookingID string) string {
	return InvoicePrefix + bookingID
}

// BookingIDFromInvoice strips the invoice prefix. ok is false when the
// invoice was not issued for a booking.
func BookingIDFromInvoice(invoiceNo string) (id string, ok bool) {
	if !strings.HasPrefix(invoiceNo, InvoicePrefix) {
		return "", false
	}
	id = strings.TrimPrefix(invoiceNo, InvoicePrefix)
	return id, id != ""
}
