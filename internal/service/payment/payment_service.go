package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/Naim3097/BOOX/internal/leanx"
	"go.uber.org/zap"
)

const (
	webhookPath     = "/api/payment-webhook"
	successPagePath = "/payment/success"
)

type PaymentUseCase interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Bill, error)
	CheckStatus(ctx context.Context, invoiceNo string) (*domain.TransactionView, error)
}

type Gateway interface {
	CreateBill(ctx context.Context, req leanx.BillRequest) (*domain.Bill, error)
	LookupTransaction(ctx context.Context, invoiceNo string) (*leanx.TransactionDetails, error)
}

type Credentials interface {
	AuthToken() (string, error)
	Resolve() (leanx.Collection, error)
}

// BillCache remembers created bills so a resubmitted form reuses its bill.
// Bills are stored per invoice and request fingerprint; a resubmission with
// a different amount or customer misses the cache.
type BillCache interface {
	GetBill(ctx context.Context, invoiceRef, fingerprint string) (*domain.Bill, error)
	SetBill(ctx context.Context, fingerprint string, bill *domain.Bill) error
}

type CreatePaymentInput struct {
	Amount        *float64 `json:"amount"`
	InvoiceRef    string   `json:"invoiceRef"`
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail"`
	CustomerPhone string   `json:"customerPhone"`

	// BaseURL is the public origin the browser used, e.g. https://example.com.
	BaseURL string `json:"-"`
}

type PaymentService struct {
	gateway       Gateway
	credentials   Credentials
	bills         BillCache
	webhookSecret string
	logger        *zap.Logger
}

type PaymentServiceOption func(*PaymentService)

func WithBillCache(c BillCache) PaymentServiceOption {
	return func(s *PaymentService) {
		s.bills = c
	}
}

// WithWebhookSecret appends ?token= to the callback URL handed to the gateway.
func WithWebhookSecret(secret string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.webhookSecret = secret
	}
}

func WithLogger(l *zap.Logger) PaymentServiceOption {
	return func(s *PaymentService) {
		s.logger = l
	}
}

func NewPaymentService(gateway Gateway, credentials Credentials, opts ...PaymentServiceOption) *PaymentService {
	s := &PaymentService{
		gateway:     gateway,
		credentials: credentials,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePayment validates the request and opens a hosted bill for it. All
// validation and credential checks happen before the gateway is contacted.
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Bill, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.credentials.AuthToken(); err != nil {
		s.logger.Error("payment gateway not configured", zap.Error(err))
		return nil, err
	}
	collection, err := s.credentials.Resolve()
	if err != nil {
		s.logger.Error("collection uuid unresolved", zap.Error(err))
		return nil, err
	}

	invoiceRef := strings.TrimSpace(input.InvoiceRef)
	log := s.logger.With(zap.String("invoice_no", invoiceRef))

	sen := ToSen(*input.Amount)
	req := leanx.BillRequest{
		CollectionUUID: collection.UUID,
		Amount:         FromSen(sen),
		InvoiceRef:     invoiceRef,
		RedirectURL:    s.redirectURL(input.BaseURL, invoiceRef),
		CallbackURL:    s.callbackURL(input.BaseURL),
		FullName:       strings.TrimSpace(input.CustomerName),
		Email:          strings.TrimSpace(input.CustomerEmail),
		PhoneNumber:    NormalizePhone(input.CustomerPhone),
	}
	fingerprint := BillFingerprint(sen, req)

	if s.bills != nil {
		cached, err := s.bills.GetBill(ctx, invoiceRef, fingerprint)
		if err != nil {
			log.Warn("bill cache lookup failed", zap.Error(err))
		} else if cached != nil {
			log.Info("reusing bill for resubmitted invoice", zap.String("bill_no", cached.BillNo))
			return cached, nil
		}
	}

	log.Info("creating bill",
		zap.Int64("amount_sen", sen),
		zap.String("collection_source", collection.Source),
	)

	bill, err := s.gateway.CreateBill(ctx, req)
	if err != nil {
		log.Error("create bill failed", zap.Error(err))
		return nil, err
	}
	if bill.InvoiceRef == "" {
		bill.InvoiceRef = invoiceRef
	}

	if s.bills != nil {
		if err := s.bills.SetBill(ctx, fingerprint, bill); err != nil {
			log.Warn("bill cache store failed", zap.Error(err))
		}
	}

	log.Info("bill created", zap.String("bill_no", bill.BillNo))
	return bill, nil
}

// BillFingerprint identifies what a bill was opened for: the amount in sen and
// the customer it is addressed to.
func BillFingerprint(sen int64, req leanx.BillRequest) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s|%s", sen, strings.ToLower(req.Email), req.PhoneNumber, req.FullName)))
	return hex.EncodeToString(sum[:8])
}

// CheckStatus asks the gateway for the current invoice state. Nothing is
// written locally.
func (s *PaymentService) CheckStatus(ctx context.Context, invoiceNo string) (*domain.TransactionView, error) {
	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		return nil, domain.NewValidationError("Missing or invalid invoiceNo query parameter")
	}
	if _, err := s.credentials.AuthToken(); err != nil {
		s.logger.Error("payment gateway not configured", zap.Error(err))
		return nil, err
	}

	details, err := s.gateway.LookupTransaction(ctx, invoiceNo)
	if err != nil {
		s.logger.Error("transaction lookup failed", zap.String("invoice_no", invoiceNo), zap.Error(err))
		return nil, err
	}

	tx := details.Transaction
	view := &domain.TransactionView{
		InvoiceNo:     tx.InvoiceNo,
		Status:        tx.InvoiceStatus,
		Outcome:       domain.OutcomeForInvoice(tx.InvoiceStatus),
		Amount:        tx.Amount.Float64(),
		AmountWithFee: tx.AmountWithFee,
		Fee:           tx.Fee,
		PaymentMethod: tx.ProviderType,
		BankProvider:  tx.BankProvider,
		TransactionID: tx.FPXInvoiceNo,
		Customer: domain.Customer{
			Name:  details.Customer.Name,
			Phone: details.Customer.PhoneNumber,
			Email: details.Customer.Email,
		},
	}

	s.logger.Info("transaction status retrieved",
		zap.String("invoice_no", view.InvoiceNo),
		zap.String("status", view.Status),
		zap.String("outcome", string(view.Outcome)),
	)
	return view, nil
}

func (s *PaymentService) redirectURL(baseURL, invoiceRef string) string {
	return strings.TrimRight(baseURL, "/") + successPagePath + "?invoiceNo=" + url.QueryEscape(invoiceRef)
}

func (s *PaymentService) callbackURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/") + webhookPath
	if s.webhookSecret != "" {
		u += "?token=" + url.QueryEscape(s.webhookSecret)
	}
	return u
}

var _ PaymentUseCase = (*PaymentService)(nil)
