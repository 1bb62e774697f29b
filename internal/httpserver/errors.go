package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/camera_shop/internal/service"
	"github.com/Skotchmaster/camera_shop/internal/validation"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrInsufficientStock, http.StatusBadRequest},
	{service.ErrAlreadyReviewed, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// fail maps a service error to an HTTP error and logs it under event.
func fail(l *slog.Logger, event string, err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := publicMessage(err, s.err)
			l.Warn(event, "status", s.status, "reason", msg, "error", err)
			return echo.NewHTTPError(s.status, msg)
		}
	}
	l.Error(event, "status", http.StatusInternalServerError, "reason", "internal error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
}

func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}

func invalid(l *slog.Logger, event string, err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"errors": fields})
	}
	l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return invalid(l, event, err)
	}
	return nil
}
