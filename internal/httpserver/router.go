package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/camera_shop/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	UserHandler    *UserHTTP
	Auth           *authmw.Authorizer
	Ready          func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authed := d.Auth.RequireAuth
	admin := d.Auth.RequireAdmin

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/top", d.CatalogHandler.TopProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, admin)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, admin)
	products.PATCH("/:id", d.CatalogHandler.UpdateProduct, admin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, admin)
	products.POST("/:id/reviews", d.CatalogHandler.CreateReview, authed)

	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, authed)
	orders.GET("", d.OrderHandler.ListOrders, admin)
	orders.GET("/myorders", d.OrderHandler.MyOrders, authed)
	orders.GET("/:id", d.OrderHandler.GetOrder, authed)
	orders.PUT("/:id/pay", d.OrderHandler.PayOrder, authed)
	orders.PUT("/:id/deliver", d.OrderHandler.DeliverOrder, admin)

	users := api.Group("/users")
	users.POST("", d.UserHandler.Register)
	users.POST("/register", d.UserHandler.Register)
	users.POST("/login", d.UserHandler.Login)
	users.POST("/refresh", d.UserHandler.Refresh)
	users.POST("/logout", d.UserHandler.Logout)
	users.GET("/profile", d.UserHandler.GetProfile, authed)
	users.PUT("/profile", d.UserHandler.UpdateProfile, authed)
	users.GET("", d.UserHandler.ListUsers, admin)
	users.GET("/:id", d.UserHandler.GetUser, admin)
	users.PUT("/:id", d.UserHandler.UpdateUser, admin)
	users.DELETE("/:id", d.UserHandler.DeleteUser, admin)
}

// RegisterStatic serves the built single-page app from dir. Unknown paths
// outside /api and /health get index.html so client-side routes resolve.
func RegisterStatic(e *echo.Echo, dir string) {
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  dir,
		Index: "index.html",
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/api") || strings.HasPrefix(p, "/health")
		},
	}))
}
