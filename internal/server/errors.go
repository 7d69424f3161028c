package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/amm"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/pumpswap"
)

var errRequired = errors.New("required")

// NotFoundJSON returns a custom HTTP error handler that returns JSON responses
// This ensures all errors (including 404s) have consistent JSON format
func NotFoundJSON() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// Don't send response if already committed
		if c.Response().Committed {
			return
		}

		// Handle Echo HTTP errors (like 404, 400, etc.)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		// Handle all other errors as internal server error
		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// fail maps a quoter or chain error onto an HTTP status
func (h *Handlers) fail(c echo.Context, err error) error {
	code, msg := statusFor(err)
	return h.err(c, code, msg, map[string]any{"err": err.Error()})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, amm.ErrInvalidAmount), errors.Is(err, amm.ErrInvalidSlippage):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, amm.ErrConfigNotReady):
		return http.StatusServiceUnavailable, "global config not loaded"
	case errors.Is(err, pumpswap.ErrAccountNotFound), errors.Is(err, pumpswap.ErrConfigNotFound):
		return http.StatusNotFound, "pool not found"
	case errors.Is(err, amm.ErrInsufficientReserves),
		errors.Is(err, amm.ErrPoolDepleted),
		errors.Is(err, amm.ErrInvalidReserves),
		errors.Is(err, amm.ErrInsufficientOutput),
		errors.Is(err, amm.ErrAmountOverflow),
		errors.Is(err, amm.ErrReserveOverflow),
		errors.Is(err, amm.ErrDivisionByZero):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream rpc timed out"
	default:
		return http.StatusBadGateway, "upstream rpc failed"
	}
}
