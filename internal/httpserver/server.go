package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/camera_shop/internal/validation"
	loggingmw "github.com/Skotchmaster/camera_shop/pkg/middleware/logging"
)

type Options struct {
	Production bool
	StaticDir  string
}

// New builds the echo instance with the shared middleware chain and all routes.
func New(log *slog.Logger, d *Deps, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, HeaderIdempotencyKey},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
	e.Use(loggingmw.RequestLogger(log))

	Register(e, d)
	if opts.Production && opts.StaticDir != "" {
		RegisterStatic(e, opts.StaticDir)
	}
	return e
}
