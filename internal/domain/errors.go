package domain

import (
	"fmt"
	"net/http"
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Message  string
	Required []string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// ConfigError means a required credential is missing or unusable. Its
// message is for operators and must not reach the browser.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Message }

// GatewayError is a failed or non-success call to the payment gateway.
type GatewayError struct {
	HTTPStatus  int
	Description string
	RawBody     string
	Err         error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway error: %s: %v", e.Description, e.Err)
	}
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("gateway error (http %d): %s", e.HTTPStatus, e.Description)
	}
	return "gateway error: " + e.Description
}

func (e *GatewayError) Unwrap() error { return e.Err }

// StatusCode is the HTTP status to surface to our own caller.
func (e *GatewayError) StatusCode() int {
	if e.HTTPStatus >= 400 {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}
