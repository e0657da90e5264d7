package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/Naim3097/BOOX/internal/leanx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateBill(ctx context.Context, req leanx.BillRequest) (*domain.Bill, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockGateway) LookupTransaction(ctx context.Context, invoiceNo string) (*leanx.TransactionDetails, error) {
	args := m.Called(ctx, invoiceNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leanx.TransactionDetails), args.Error(1)
}

type MockBillCache struct {
	mock.Mock
}

func (m *MockBillCache) GetBill(ctx context.Context, invoiceRef, fingerprint string) (*domain.Bill, error) {
	args := m.Called(ctx, invoiceRef, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillCache) SetBill(ctx context.Context, fingerprint string, bill *domain.Bill) error {
	args := m.Called(ctx, fingerprint, bill)
	return args.Error(0)
}

const testToken = "LP-C64B42C3-MM|dc09cd86-6311-4730-8819-55bba6736620|e68bd67be0597380af9a"

func amount(v float64) *float64 { return &v }

func validInput() CreatePaymentInput {
	return CreatePaymentInput{
		Amount:        amount(1.00),
		InvoiceRef:    "BOOKING-abc123",
		CustomerName:  "Ali Bin Abu",
		CustomerEmail: "ali@example.com",
		CustomerPhone: "012-345 6789",
		BaseURL:       "https://boox.example.com",
	}
}

func TestPaymentService_CreatePayment_Success(t *testing.T) {
	gw := &MockGateway{}
	svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""))

	bill := &domain.Bill{InvoiceRef: "BOOKING-abc123", BillNo: "BP-1", RedirectURL: "https://pay.leanx.dev/b/1"}
	gw.On("CreateBill", mock.Anything, mock.MatchedBy(func(req leanx.BillRequest) bool {
		return req.CollectionUUID == "dc09cd86-6311-4730-8819-55bba6736620" &&
			req.Amount == 1.00 &&
			req.InvoiceRef == "BOOKING-abc123" &&
			req.RedirectURL == "https://boox.example.com/payment/success?invoiceNo=BOOKING-abc123" &&
			req.CallbackURL == "https://boox.example.com/api/payment-webhook" &&
			req.PhoneNumber == "0123456789"
	})).Return(bill, nil).Once()

	got, err := svc.CreatePayment(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, bill.RedirectURL, got.RedirectURL)
	assert.Equal(t, "BP-1", got.BillNo)
	gw.AssertExpectations(t)
}

func TestPaymentService_CreatePayment_WebhookSecretInCallback(t *testing.T) {
	gw := &MockGateway{}
	svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, "explicit-id"), WithWebhookSecret("s3cr3t"))

	gw.On("CreateBill", mock.Anything, mock.MatchedBy(func(req leanx.BillRequest) bool {
		return req.CallbackURL == "https://boox.example.com/api/payment-webhook?token=s3cr3t" &&
			req.CollectionUUID == "explicit-id"
	})).Return(&domain.Bill{BillNo: "BP-2", RedirectURL: "https://pay/2"}, nil).Once()

	got, err := svc.CreatePayment(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, "BOOKING-abc123", got.InvoiceRef)
	gw.AssertExpectations(t)
}

func TestPaymentService_CreatePayment_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*CreatePaymentInput)
		message string
	}{
		{name: "missing amount", mutate: func(in *CreatePaymentInput) { in.Amount = nil }, message: msgMissingFields},
		{name: "missing email", mutate: func(in *CreatePaymentInput) { in.CustomerEmail = " " }, message: msgMissingFields},
		{name: "zero amount", mutate: func(in *CreatePaymentInput) { in.Amount = amount(0) }, message: msgInvalidAmount},
		{name: "negative amount", mutate: func(in *CreatePaymentInput) { in.Amount = amount(-5) }, message: msgInvalidAmount},
		{name: "above max", mutate: func(in *CreatePaymentInput) { in.Amount = amount(10000.01) }, message: msgInvalidAmount},
		{name: "bad email", mutate: func(in *CreatePaymentInput) { in.CustomerEmail = "ali@example" }, message: msgInvalidEmail},
		{name: "landline", mutate: func(in *CreatePaymentInput) { in.CustomerPhone = "0312345678" }, message: msgInvalidPhone},
		{name: "short mobile", mutate: func(in *CreatePaymentInput) { in.CustomerPhone = "0123456" }, message: msgInvalidPhone},
		// amount is checked before email
		{name: "order", mutate: func(in *CreatePaymentInput) { in.Amount = amount(0); in.CustomerEmail = "x" }, message: msgInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &MockGateway{}
			svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""))
			in := validInput()
			tc.mutate(&in)

			_, err := svc.CreatePayment(context.Background(), in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.message, verr.Message)
			gw.AssertNotCalled(t, "CreateBill", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_CreatePayment_MissingFieldsListsRequired(t *testing.T) {
	svc := NewPaymentService(&MockGateway{}, leanx.NewCredentialResolver(testToken, ""))

	_, err := svc.CreatePayment(context.Background(), CreatePaymentInput{})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, RequiredFields, verr.Required)
}

func TestPaymentService_CreatePayment_AmountBoundaries(t *testing.T) {
	for _, a := range []float64{0.01, 1, 9999.99, 10000} {
		gw := &MockGateway{}
		gw.On("CreateBill", mock.Anything, mock.Anything).Return(&domain.Bill{BillNo: "BP"}, nil).Once()
		svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""))
		in := validInput()
		in.Amount = amount(a)

		_, err := svc.CreatePayment(context.Background(), in)

		assert.NoError(t, err, "amount %v", a)
		gw.AssertExpectations(t)
	}
}

func TestPaymentService_CreatePayment_ConfigErrorBeforeNetwork(t *testing.T) {
	testCases := []struct {
		name     string
		resolver *leanx.CredentialResolver
	}{
		{name: "no token", resolver: leanx.NewCredentialResolver("", "explicit")},
		{name: "unresolvable collection", resolver: leanx.NewCredentialResolver("a|short|b", "")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &MockGateway{}
			svc := NewPaymentService(gw, tc.resolver)

			_, err := svc.CreatePayment(context.Background(), validInput())

			var cerr *domain.ConfigError
			assert.ErrorAs(t, err, &cerr)
			gw.AssertNotCalled(t, "CreateBill", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_CreatePayment_GatewayError(t *testing.T) {
	gw := &MockGateway{}
	svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""))
	gerr := &domain.GatewayError{HTTPStatus: http.StatusBadRequest, Description: "Duplicate invoice"}
	gw.On("CreateBill", mock.Anything, mock.Anything).Return(nil, gerr).Once()

	_, err := svc.CreatePayment(context.Background(), validInput())

	var got *domain.GatewayError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "Duplicate invoice", got.Description)
	assert.NotContains(t, err.Error(), testToken)
}

func TestPaymentService_CreatePayment_ReusesCachedBill(t *testing.T) {
	gw := &MockGateway{}
	bills := &MockBillCache{}
	svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""), WithBillCache(bills))

	cached := &domain.Bill{InvoiceRef: "BOOKING-abc123", BillNo: "BP-1", RedirectURL: "https://pay/1"}
	bills.On("GetBill", mock.Anything, "BOOKING-abc123", mock.Anything).Return(cached, nil).Once()

	got, err := svc.CreatePayment(context.Background(), validInput())

	require.NoError(t, err)
	assert.Same(t, cached, got)
	gw.AssertNotCalled(t, "CreateBill", mock.Anything, mock.Anything)
	bills.AssertExpectations(t)
}

func TestPaymentService_CreatePayment_CacheFailureDoesNotBlock(t *testing.T) {
	gw := &MockGateway{}
	bills := &MockBillCache{}
	svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""), WithBillCache(bills))

	bill := &domain.Bill{InvoiceRef: "BOOKING-abc123", BillNo: "BP-1", RedirectURL: "https://pay/1"}
	bills.On("GetBill", mock.Anything, "BOOKING-abc123", mock.Anything).Return(nil, errors.New("redis down")).Once()
	gw.On("CreateBill", mock.Anything, mock.Anything).Return(bill, nil).Once()
	bills.On("SetBill", mock.Anything, mock.Anything, bill).Return(errors.New("redis down")).Once()

	got, err := svc.CreatePayment(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, "BP-1", got.BillNo)
	gw.AssertExpectations(t)
	bills.AssertExpectations(t)
}

func TestPaymentService_CreatePayment_ChangedResubmissionMissesCache(t *testing.T) {
	gw := &MockGateway{}
	bills := &MockBillCache{}
	svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""), WithBillCache(bills))

	first := validInput()
	changed := validInput()
	changed.Amount = amount(2.00)

	var keys []string
	bills.On("GetBill", mock.Anything, "BOOKING-abc123", mock.Anything).
		Run(func(args mock.Arguments) { keys = append(keys, args.String(2)) }).
		Return(nil, nil).Twice()
	bill := &domain.Bill{InvoiceRef: "BOOKING-abc123", BillNo: "BP-1", RedirectURL: "https://pay/1"}
	gw.On("CreateBill", mock.Anything, mock.Anything).Return(bill, nil).Twice()
	bills.On("SetBill", mock.Anything, mock.Anything, bill).Return(nil).Twice()

	_, err := svc.CreatePayment(context.Background(), first)
	require.NoError(t, err)
	_, err = svc.CreatePayment(context.Background(), changed)
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
	gw.AssertNumberOfCalls(t, "CreateBill", 2)
}

func TestBillFingerprint(t *testing.T) {
	req := leanx.BillRequest{FullName: "Ali", Email: "Ali@Example.com", PhoneNumber: "0123456789"}
	same := req
	same.Email = "ali@example.com"
	otherEmail := req
	otherEmail.Email = "abu@example.com"

	assert.Equal(t, BillFingerprint(100, req), BillFingerprint(100, same))
	assert.NotEqual(t, BillFingerprint(100, req), BillFingerprint(200, req))
	assert.NotEqual(t, BillFingerprint(100, req), BillFingerprint(100, otherEmail))
	assert.Len(t, BillFingerprint(100, req), 16)
}

func lookupResult(status string) *leanx.TransactionDetails {
	var d leanx.TransactionDetails
	d.Transaction.InvoiceNo = "BOOKING-abc123"
	d.Transaction.InvoiceStatus = status
	d.Transaction.Amount = "1.00"
	d.Transaction.AmountWithFee = 1.5
	d.Transaction.Fee = 0.5
	d.Transaction.ProviderType = "WEB_PAYMENT"
	d.Transaction.BankProvider = "Maybank2u"
	d.Transaction.FPXInvoiceNo = "FPX123"
	d.Customer.Name = "Ali"
	d.Customer.Email = "ali@example.com"
	d.Customer.PhoneNumber = "0123456789"
	return &d
}

func TestPaymentService_CheckStatus(t *testing.T) {
	testCases := []struct {
		status  string
		outcome domain.PaymentOutcome
	}{
		{status: "SUCCESS", outcome: domain.OutcomeSuccess},
		{status: "FAILED", outcome: domain.OutcomeFailed},
		{status: "CANCELLED", outcome: domain.OutcomeFailed},
		{status: "PENDING", outcome: domain.OutcomePending},
		{status: "SOMETHING_NEW", outcome: domain.OutcomePending},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			gw := &MockGateway{}
			svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""))
			gw.On("LookupTransaction", mock.Anything, "BOOKING-abc123").Return(lookupResult(tc.status), nil).Once()

			view, err := svc.CheckStatus(context.Background(), "BOOKING-abc123")

			require.NoError(t, err)
			assert.Equal(t, tc.status, view.Status)
			assert.Equal(t, tc.outcome, view.Outcome)
			assert.Equal(t, 1.0, view.Amount)
			assert.Equal(t, "FPX123", view.TransactionID)
			assert.Equal(t, "WEB_PAYMENT", view.PaymentMethod)
			assert.Equal(t, "0123456789", view.Customer.Phone)
		})
	}
}

func TestPaymentService_CheckStatus_Errors(t *testing.T) {
	gw := &MockGateway{}
	svc := NewPaymentService(gw, leanx.NewCredentialResolver(testToken, ""))

	_, err := svc.CheckStatus(context.Background(), "  ")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	unconfigured := NewPaymentService(gw, leanx.NewCredentialResolver("", ""))
	_, err = unconfigured.CheckStatus(context.Background(), "BOOKING-x")
	var cerr *domain.ConfigError
	assert.ErrorAs(t, err, &cerr)

	gw.On("LookupTransaction", mock.Anything, "BOOKING-x").Return(nil, &domain.GatewayError{Description: "timeout"}).Once()
	_, err = svc.CheckStatus(context.Background(), "BOOKING-x")
	var gerr *domain.GatewayError
	assert.ErrorAs(t, err, &gerr)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidPhone("+60123456789"))
	assert.True(t, ValidPhone("60123456789"))
	assert.True(t, ValidPhone("011-2345 6789"))
	assert.False(t, ValidPhone("+6512345678"))
	assert.True(t, ValidEmail("a.b@c.co"))
	assert.False(t, ValidEmail("a b@c.co"))
	assert.Equal(t, int64(1), ToSen(0.01))
	assert.Equal(t, int64(1999), ToSen(19.99))
	assert.Equal(t, 10.01, FromSen(1001))
}
