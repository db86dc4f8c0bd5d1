package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
)

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and reported as an opaque 500 so internals never leak to clients.
func writeError(c echo.Context, logger *zap.Logger, err error) error {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		logger.Error("Unhandled error",
			zap.Error(err),
			zap.String("path", c.Path()))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    domain.ErrCodeInternal,
			Message: "internal error",
		})
	}

	status := http.StatusInternalServerError
	switch de.Code {
	case domain.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case domain.ErrCodeNotFound:
		status = http.StatusNotFound
	case domain.ErrCodeAlreadyExists:
		status = http.StatusConflict
	case domain.ErrCodeInvalidState:
		status = http.StatusConflict
	case domain.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case domain.ErrCodePaymentFailed:
		status = http.StatusBadGateway
	}

	return c.JSON(status, ErrorResponse{
		Code:    de.Code,
		Message: de.Message,
		Details: de.Details,
	})
}
