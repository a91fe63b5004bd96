package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/productscience/streampay/logging"
)

func LoggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		logging.Info("Received request", logging.Server, "method", req.Method, "path", req.URL.Path)
		logging.Debug("Request headers", logging.Server, "headers", req.Header)
		return next(c)
	}
}
