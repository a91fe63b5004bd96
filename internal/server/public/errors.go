package public

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrAddressRequired   = echo.NewHTTPError(http.StatusBadRequest, "Stream address is required")
	ErrAccountRequired   = echo.NewHTTPError(http.StatusBadRequest, "Account is required")
	ErrCallerRequired    = echo.NewHTTPError(http.StatusBadRequest, "Caller is required")
	ErrInvalidKind       = echo.NewHTTPError(http.StatusBadRequest, "Kind must be fixed-rate or usd-pegged")
	ErrInvalidAmount     = echo.NewHTTPError(http.StatusBadRequest, "Amount must be a positive integer string")
	ErrInvalidIndex      = echo.NewHTTPError(http.StatusBadRequest, "Index must be a non-negative integer")
	ErrInvalidBlob       = echo.NewHTTPError(http.StatusBadRequest, "Price update must be base64")
	ErrAddressesRequired = echo.NewHTTPError(http.StatusBadRequest, "At least one stream address is required")
)
