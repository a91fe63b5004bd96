package middleware_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/productscience/streampay/bank"
	"github.com/productscience/streampay/internal/server/middleware"
	"github.com/productscience/streampay/x/streampay/types"
)

func TestExtractError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", types.ErrStreamNotFound.Wrap("abc"), http.StatusNotFound},
		{"unauthorized", types.ErrUnauthorized.Wrap("caller"), http.StatusForbidden},
		{"insufficient balance", errors.Wrap(bank.ErrInsufficientBalance, "short"), http.StatusPaymentRequired},
		{"paused", types.ErrStreamPaused.Wrap("abc"), http.StatusUnprocessableEntity},
		{"stale price", types.ErrStalePrice.Wrapf("age %d", 120), http.StatusFailedDependency},
		{"deviation", types.ErrPriceDeviationTooHigh.Wrap("1500 bps"), http.StatusFailedDependency},
		{"bad input", types.ErrInvalidAmount.Wrap("zero"), http.StatusBadRequest},
		{"http error passthrough", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := middleware.ExtractError(tc.err)
			require.Equal(t, tc.wantStatus, status)
		})
	}
}
