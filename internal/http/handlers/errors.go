package handlers

import (
	"errors"
	"net/http"

	"boatbooking/internal/domain"
	"boatbooking/internal/http/middleware"
	"boatbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Status:    "error",
		Error:     message,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		respondError(c, http.StatusBadRequest, "invalid_token", "Invalid booking token", nil)
	case errors.Is(err, domain.ErrOrderMismatch):
		respondError(c, http.StatusBadRequest, "order_mismatch", "Order ID mismatch", nil)
	case errors.Is(err, domain.ErrSignatureInvalid):
		respondError(c, http.StatusBadRequest, "signature_invalid", "Signature verification failed", nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsUpload(err):
		respondError(c, http.StatusBadRequest, "upload_error", err.Error(), nil)
	case domain.IsGatewayOrder(err):
		respondError(c, http.StatusBadGateway, "gateway_error", "payment gateway unavailable", nil)
	case domain.IsPersistence(err):
		logInternal(c, err)
		respondError(c, http.StatusInternalServerError, "persistence_error", "booking could not be saved, please retry", nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		logInternal(c, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

func logInternal(c *gin.Context, err error) {
	utils.Logger(middleware.GetRequestID(c), "http", c.FullPath()).WithError(err).Error("request failed")
}
