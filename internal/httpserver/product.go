package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/camera_shop/internal/logging"
	"github.com/Skotchmaster/camera_shop/internal/service"
	"github.com/Skotchmaster/camera_shop/internal/transport"
	"github.com/Skotchmaster/camera_shop/internal/util"
	authmw "github.com/Skotchmaster/camera_shop/pkg/middleware/auth"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// parseID treats a malformed id like a missing resource.
func parseID(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn(event, "status", http.StatusNotFound, "reason", "id is not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	}
	return id, nil
}

func caller(c echo.Context) service.Caller {
	return service.Caller{ID: authmw.UserID(c), Role: authmw.Role(c), Name: authmw.Name(c)}
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParsePage(c.QueryParam("pageNumber"))
	res, err := h.Svc.ListProducts(ctx, c.QueryParam("keyword"), page)
	if err != nil {
		return fail(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParsePage(c.QueryParam("pageNumber"))
	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) TopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.top")

	items, err := h.Svc.TopProducts(ctx)
	if err != nil {
		return fail(l, "top_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, l, "get_product_error")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := bindAndValidate(c, l, "create_product_error", &req); err != nil {
		return err
	}
	p, err := h.Svc.CreateProduct(ctx, authmw.UserID(c), req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c, l, "update_product_error")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := bindAndValidate(c, l, "update_product_error", &req); err != nil {
		return err
	}
	p, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return fail(l, "update_product_error", err)
	}

	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c, l, "delete_product_error")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product removed"})
}

func (h *CatalogHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_review")

	id, err := parseID(c, l, "create_review_error")
	if err != nil {
		return err
	}
	var req transport.ReviewRequest
	if err := bindAndValidate(c, l, "create_review_error", &req); err != nil {
		return err
	}
	if err := h.Svc.AddReview(ctx, id, caller(c), req); err != nil {
		return fail(l, "create_review_error", err)
	}

	l.Info("create_review_success", "product_id", id)
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Review added"})
}
