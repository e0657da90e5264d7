package leanx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Naim3097/BOOX/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	createBillPath       = "/api/v1/merchant/create-bill-page"
	checkTransactionPath = "/api/v1/merchant/manual-checking-transaction"

	authHeader = "auth-token"

	redacted = "[REDACTED]"
	// minSecretLen keeps short fragments from mangling unrelated text.
	minSecretLen = 8

	// maxBodyBytes caps how much of a gateway response is read.
	maxBodyBytes = 1 << 20
)

// Client talks to the Lean.x merchant API. Each call is a single attempt;
// duplicate protection relies on the invoice reference.
type Client struct {
	baseURL   string
	authToken string
	http      *http.Client
	tracer    trace.Tracer
}

type Option func(*Client)

// WithHTTPClient replaces the default client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL, authToken string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		authToken: authToken,
		http:      &http.Client{Timeout: timeout},
		tracer:    otel.Tracer("github.com/Naim3097/BOOX/internal/leanx"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateBill asks the gateway for a hosted bill page.
func (c *Client) CreateBill(ctx context.Context, req BillRequest) (*domain.Bill, error) {
	ctx, span := c.tracer.Start(ctx, "leanx.CreateBill", trace.WithAttributes(
		attribute.String("invoice_ref", req.InvoiceRef),
		attribute.Float64("amount", req.Amount),
	))
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode bill request: %w", err)
	}

	var data billData
	if err := c.do(ctx, span, c.baseURL+createBillPath, body, &data, req.CollectionUUID); err != nil {
		return nil, err
	}

	return &domain.Bill{
		InvoiceRef:  data.InvoiceRef,
		BillNo:      data.BillNo,
		RedirectURL: data.RedirectURL,
	}, nil
}

// LookupTransaction fetches the current state of an invoice.
func (c *Client) LookupTransaction(ctx context.Context, invoiceNo string) (*TransactionDetails, error) {
	ctx, span := c.tracer.Start(ctx, "leanx.LookupTransaction", trace.WithAttributes(
		attribute.String("invoice_no", invoiceNo),
	))
	defer span.End()

	endpoint := c.baseURL + checkTransactionPath + "?invoice_no=" + url.QueryEscape(invoiceNo)

	var details TransactionDetails
	if err := c.do(ctx, span, endpoint, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// do performs one call. Gateway errors never carry the auth token or any of
// the extra secrets, even when the gateway echoes them back.
func (c *Client) do(ctx context.Context, span trace.Span, endpoint string, body []byte, out any, secrets ...string) error {
	fail := func(gerr *domain.GatewayError) error {
		return c.fail(span, c.redact(gerr, secrets))
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return fail(&domain.GatewayError{Description: "could not build request", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(authHeader, c.authToken)

	res, err := c.http.Do(req)
	if err != nil {
		return fail(&domain.GatewayError{Description: "request to payment gateway failed", Err: err})
	}
	defer res.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return fail(&domain.GatewayError{HTTPStatus: res.StatusCode, Description: "could not read gateway response", Err: err})
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		desc := http.StatusText(res.StatusCode)
		if decodeErr == nil && env.Description != "" {
			desc = env.Description
		}
		return fail(&domain.GatewayError{HTTPStatus: res.StatusCode, Description: desc, RawBody: string(raw)})
	}
	if decodeErr != nil {
		return fail(&domain.GatewayError{HTTPStatus: res.StatusCode, Description: "malformed gateway response", RawBody: string(raw), Err: decodeErr})
	}
	if env.ResponseCode != SuccessCode {
		desc := env.Description
		if desc == "" {
			desc = fmt.Sprintf("response_code %d", env.ResponseCode)
		}
		return fail(&domain.GatewayError{HTTPStatus: res.StatusCode, Description: desc, RawBody: string(raw)})
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fail(&domain.GatewayError{HTTPStatus: res.StatusCode, Description: "malformed gateway data", RawBody: string(raw), Err: err})
	}
	return nil
}

func (c *Client) redact(gerr *domain.GatewayError, secrets []string) *domain.GatewayError {
	values := append([]string{c.authToken}, strings.Split(c.authToken, "|")...)
	values = append(values, secrets...)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if len(v) < minSecretLen {
			continue
		}
		gerr.RawBody = strings.ReplaceAll(gerr.RawBody, v, redacted)
		gerr.Description = strings.ReplaceAll(gerr.Description, v, redacted)
	}
	return gerr
}

func (c *Client) fail(span trace.Span, gerr *domain.GatewayError) error {
	span.RecordError(gerr)
	span.SetStatus(codes.Error, gerr.Description)
	return gerr
}
