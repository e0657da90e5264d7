package domain

import "time"

// Raw invoice statuses reported by the gateway.
const (
	InvoiceStatusSuccess   = "SUCCESS"
	InvoiceStatusFailed    = "FAILED"
	InvoiceStatusCancelled = "CANCELLED"
	InvoiceStatusPending   = "PENDING"
)

const (
	DefaultPaymentProvider = "Unknown"
	DefaultPaymentMethod   = "FPX"
)

// PaymentFacts is the denormalised payment state kept on a booking. The
// whole set is rewritten on every notification.
type PaymentFacts struct {
	Status        string
	InvoiceNo     string
	Amount        float64
	Provider      string
	Method        string
	TransactionID *string
	UpdatedAt     *time.Time
}

// BookingStatusForInvoice maps a gateway invoice status onto a booking status.
func BookingStatusForInvoice(invoiceStatus string) BookingStatus {
	switch invoiceStatus {
	case InvoiceStatusSuccess:
		return BookingStatusConfirmed
	case InvoiceStatusFailed, InvoiceStatusCancelled:
		return BookingStatusCancelled
	default:
		return BookingStatusPending
	}
}

type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFailed  PaymentOutcome = "failed"
	OutcomePending PaymentOutcome = "pending"
)

// OutcomeForInvoice tells the browser which page to render. Anything not
// definitively settled is pending, never an error.
func OutcomeForInvoice(invoiceStatus string) PaymentOutcome {
	switch invoiceStatus {
	case InvoiceStatusSuccess:
		return OutcomeSuccess
	case InvoiceStatusFailed, InvoiceStatusCancelled:
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

// PaymentNotification is an inbound webhook delivery.
type PaymentNotification struct {
	InvoiceNo     string
	InvoiceStatus string
	Amount        float64
	Provider      string
	Method        string
	TransactionID string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// Facts converts the notification into the payment fields stored on the
// booking, filling the documented defaults.
func (n PaymentNotification) Facts(at time.Time) PaymentFacts {
	facts := PaymentFacts{
		Status:    n.InvoiceStatus,
		InvoiceNo: n.InvoiceNo,
		Amount:    n.Amount,
		Provider:  n.Provider,
		Method:    n.Method,
		UpdatedAt: &at,
	}
	if facts.Provider == "" {
		facts.Provider = DefaultPaymentProvider
	}
	if facts.Method == "" {
		facts.Method = DefaultPaymentMethod
	}
	if n.TransactionID != "" {
		id := n.TransactionID
		facts.TransactionID = &id
	}
	return facts
}

// Bill is the gateway-side payment request created for a booking.
type Bill struct {
	InvoiceRef  string `json:"invoice_ref"`
	BillNo      string `json:"bill_no"`
	RedirectURL string `json:"redirect_url"`
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone_number"`
	Email string `json:"email"`
}

// TransactionView is the flattened status returned to the browser.
type TransactionView struct {
	InvoiceNo     string         `json:"invoiceNo"`
	Status        string         `json:"status"`
	Outcome       PaymentOutcome `json:"outcome"`
	Amount        float64        `json:"amount"`
	AmountWithFee float64        `json:"amountWithFee"`
	Fee           float64        `json:"fee"`
	PaymentMethod string         `json:"paymentMethod"`
	BankProvider  string         `json:"bankProvider"`
	TransactionID string         `json:"transactionId"`
	Customer      Customer       `json:"-"`
}
