package booking

import (
	"strings"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/Naim3097/BOOX/internal/service/payment"
)

var requiredBookingFields = []string{"name", "email", "phone", "date", "timeSlot"}

func validateBooking(in CreateBookingInput) error {
	if strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.Phone) == "" ||
		strings.TrimSpace(in.Date) == "" ||
		strings.TrimSpace(in.TimeSlot) == "" {
		return &domain.ValidationError{Message: "Missing required fields", Required: requiredBookingFields}
	}
	if !payment.ValidEmail(strings.TrimSpace(in.Email)) {
		return domain.NewValidationError("Invalid email format")
	}
	if !payment.ValidPhone(in.Phone) {
		return domain.NewValidationError("Invalid phone number. Must be a valid Malaysian mobile number (e.g., 0123456789)")
	}
	if !domain.ValidTimeSlot(in.TimeSlot) {
		return domain.NewValidationError("Invalid time slot")
	}
	return nil
}
