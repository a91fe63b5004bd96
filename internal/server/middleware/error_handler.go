package middleware

import (
	"errors"
	"net/http"

	sdkerrors "cosmossdk.io/errors"
	"github.com/labstack/echo/v4"

	"github.com/productscience/streampay/bank"
	"github.com/productscience/streampay/x/streampay/types"
)

// EngineErrorHandler maps engine errors onto HTTP statuses and always
// responds with JSON of the form {"error": "<message>"} so clients can
// reliably parse failures.
func EngineErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, message := ExtractError(err)
	_ = c.JSON(status, map[string]interface{}{"error": message})
}

// ExtractError resolves the status code for an error: explicit HTTP errors
// keep their code, registered engine errors get a categorical mapping, and
// everything else is a 500.
func ExtractError(err error) (int, interface{}) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Message != nil {
			return he.Code, he.Message
		}
		return he.Code, he.Error()
	}
	return engineStatus(err), err.Error()
}

func engineStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrStreamNotFound),
		errors.Is(err, types.ErrRegistryNotFound),
		errors.Is(err, types.ErrFeedNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, bank.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, types.ErrStreamExists):
		return http.StatusConflict
	case errors.Is(err, types.ErrStreamInactive),
		errors.Is(err, types.ErrStreamPaused),
		errors.Is(err, types.ErrNotCancelable),
		errors.Is(err, types.ErrInsufficientAccrual),
		errors.Is(err, types.ErrInsufficientFeeReserve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrStalePrice),
		errors.Is(err, types.ErrPriceDeviationTooHigh),
		errors.Is(err, types.ErrNegativePrice):
		return http.StatusFailedDependency
	case isRegistered(err):
		// Remaining engine errors are bad input.
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isRegistered(err error) bool {
	var registered *sdkerrors.Error
	return errors.As(err, &registered)
}
