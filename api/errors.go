package api

import (
	"errors"
	"net/http"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgGatewayNotConfigured = "Payment gateway not configured. Please contact support."
	msgGatewayError         = "Payment gateway error"
	msgInternal             = "Internal server error"
)

// respondError maps a service error onto the HTTP response. Config and
// internal details are logged, never returned.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigError
		gatewayErr    *domain.GatewayError
		notFoundErr   *domain.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		body := gin.H{"error": validationErr.Message}
		if len(validationErr.Required) > 0 {
			body["required"] = validationErr.Required
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &configErr):
		logger.Error("configuration error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGatewayNotConfigured})
	case errors.As(err, &gatewayErr):
		logger.Warn("payment gateway error",
			zap.Int("gateway_status", gatewayErr.HTTPStatus),
			zap.String("description", gatewayErr.Description),
		)
		body := gin.H{
			"error":   msgGatewayError,
			"message": gatewayErr.Description,
		}
		if gatewayErr.RawBody != "" {
			body["details"] = gatewayErr.RawBody
		}
		c.JSON(gatewayErr.StatusCode(), body)
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	default:
		logger.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}
