package payment

import (
	"math"
	"regexp"
	"strings"

	"github.com/Naim3097/BOOX/internal/domain"
)

const (
	MaxAmount = 10000.0

	msgMissingFields = "Missing required fields"
	msgInvalidAmount = "Invalid amount. Must be between 0.01 and 10,000 MYR"
	msgInvalidEmail  = "Invalid email format"
	msgInvalidPhone  = "Invalid phone number. Must be a valid Malaysian mobile number (e.g., 0123456789)"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+?6?01)[0-9]{8,9}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "")
)

// RequiredFields lists the create-payment fields in the order they are
// reported back to the caller.
var RequiredFields = []string{"amount", "invoiceRef", "customerName", "customerEmail", "customerPhone"}

func validateInput(in CreatePaymentInput) error {
	if in.Amount == nil ||
		strings.TrimSpace(in.InvoiceRef) == "" ||
		strings.TrimSpace(in.CustomerName) == "" ||
		strings.TrimSpace(in.CustomerEmail) == "" ||
		strings.TrimSpace(in.CustomerPhone) == "" {
		return &domain.ValidationError{Message: msgMissingFields, Required: RequiredFields}
	}
	if !ValidAmount(*in.Amount) {
		return domain.NewValidationError(msgInvalidAmount)
	}
	if !ValidEmail(in.CustomerEmail) {
		return domain.NewValidationError(msgInvalidEmail)
	}
	if !ValidPhone(in.CustomerPhone) {
		return domain.NewValidationError(msgInvalidPhone)
	}
	return nil
}

func ValidAmount(amount float64) bool {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return false
	}
	return amount > 0 && amount <= MaxAmount
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone accepts Malaysian mobile numbers with or without the country
// code. Spaces and hyphens are ignored.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

func NormalizePhone(phone string) string {
	return phoneSeparators.Replace(phone)
}

// ToSen converts a major-unit amount to sen, rounding half away from zero.
func ToSen(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromSen renders sen as the two-decimal major-unit value the gateway expects.
func FromSen(sen int64) float64 {
	return float64(sen) / 100
}
