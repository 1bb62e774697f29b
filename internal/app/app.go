package app

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/config"
	"github.com/Skotchmaster/camera_shop/internal/es"
	"github.com/Skotchmaster/camera_shop/internal/httpserver"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/internal/pricing"
	"github.com/Skotchmaster/camera_shop/internal/repo"
	"github.com/Skotchmaster/camera_shop/internal/service"
	"github.com/Skotchmaster/camera_shop/pkg/db"
	authmw "github.com/Skotchmaster/camera_shop/pkg/middleware/auth"
)

type Backends struct {
	Events mykafka.Publisher
	Index  es.ProductIndex
}

// New wires repositories, services and handlers over one database handle.
func New(gdb *gorm.DB, cfg config.Config, log *slog.Logger, b Backends) *echo.Echo {
	r := repo.New(gdb)
	rates := pricing.Rates{TaxRate: cfg.TaxRate, ShippingFee: cfg.ShippingFee, FreeShippingOver: cfg.FreeShippingOver}

	catalog := service.NewCatalogService(r, b.Index, b.Events)
	orders := service.NewOrderService(r, b.Index, b.Events, rates)
	users := service.NewUserService(r, b.Events, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	deps := &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orders},
		UserHandler:    &httpserver.UserHTTP{Svc: users},
		Auth:           authmw.NewAuthorizer(cfg.JWTAccessSecret, r),
		Ready:          func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	}
	return httpserver.New(log, deps, httpserver.Options{Production: cfg.IsProduction(), StaticDir: cfg.StaticDir})
}
