package middleware

import (
	"errors"
	"net/http"

	"github.com/Ross1116/sitespace-app-sub000/internal/logger"
	"github.com/Ross1116/sitespace-app-sub000/pkg/backend"
	"github.com/labstack/echo/v4"
)

// ErrorHandler builds echo's central error handler. HTTPErrors raised by the
// handlers keep their code, failures from the upstream sitespace API surface
// as 502 with the backend's own message, and anything unexpected is logged
// before the generic 500 goes out.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := err.Error()

		var he *echo.HTTPError
		var apiErr *backend.APIError
		switch {
		case errors.As(err, &he):
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		case errors.As(err, &apiErr):
			code = http.StatusBadGateway
			msg = apiErr.Error()
		}

		if code >= http.StatusInternalServerError {
			log.Errorw("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", code,
				"error", err)
		}

		_ = c.JSON(code, map[string]string{"message": msg})
	}
}
