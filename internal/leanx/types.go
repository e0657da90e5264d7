package leanx

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SuccessCode is the only response_code the gateway uses for success.
const SuccessCode = 2000

type envelope struct {
	ResponseCode    int             `json:"response_code"`
	Description     string          `json:"description"`
	Data            json.RawMessage `json:"data"`
	BreakdownErrors json.RawMessage `json:"breakdown_errors"`
}

// BillRequest is the create-bill payload. Amount is in major units with two
// decimals.
type BillRequest struct {
	CollectionUUID string  `json:"collection_uuid"`
	Amount         float64 `json:"amount"`
	InvoiceRef     string  `json:"invoice_ref"`
	RedirectURL    string  `json:"redirect_url"`
	CallbackURL    string  `json:"callback_url"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	PhoneNumber    string  `json:"phone_number"`
}

type billData struct {
	CollectionUUID string `json:"collection_uuid"`
	RedirectURL    string `json:"redirect_url"`
	BillNo         string `json:"bill_no"`
	InvoiceRef     string `json:"invoice_ref"`
}

// TransactionDetails is the manual-checking-transaction payload.
type TransactionDetails struct {
	Transaction struct {
		InvoiceNo     string  `json:"invoice_no"`
		FPXInvoiceNo  string  `json:"fpx_invoice_no"`
		Amount        Amount  `json:"amount"`
		InvoiceStatus string  `json:"invoice_status"`
		ProviderType  string  `json:"providerTypeReference"`
		BankProvider  string  `json:"bank_provider"`
		CategoryCode  string  `json:"category_code"`
		AmountWithFee float64 `json:"amount_with_fee"`
		Fee           float64 `json:"fee"`
		FeeByCustomer bool    `json:"fee_by_customer"`
	} `json:"transaction_details"`
	Customer struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phone_number"`
		Email       string `json:"email"`
	} `json:"customer_details"`
}

// Amount accepts both "1.00" and 1.00 on the wire; the gateway is not
// consistent between endpoints.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(b)
	return nil
}

// Float64 parses the amount, returning 0 for empty or malformed values.
func (a Amount) Float64() float64 {
	f, err := strconv.ParseFloat(string(a), 64)
	if err != nil {
		return 0
	}
	return f
}

// WebhookPayload is the body the gateway posts to the callback URL.
type WebhookPayload struct {
	InvoiceNo     string `json:"invoice_no"`
	InvoiceStatus string `json:"invoice_status"`
	Amount        Amount `json:"amount"`
	ProviderType  string `json:"providerTypeReference"`
	BankProvider  string `json:"bank_provider"`
	FPXInvoiceNo  string `json:"fpx_invoice_no"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}
