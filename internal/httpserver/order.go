package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/camera_shop/internal/logging"
	"github.com/Skotchmaster/camera_shop/internal/service"
	"github.com/Skotchmaster/camera_shop/internal/transport"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.OrderItems) == 0 {
		l.Warn("create_order_error", "status", http.StatusBadRequest, "reason", "no order items")
		return echo.NewHTTPError(http.StatusBadRequest, "No order items")
	}
	if err := c.Validate(&req); err != nil {
		return invalid(l, "create_order_error", err)
	}

	o, err := h.Svc.CreateOrder(ctx, caller(c), c.Request().Header.Get(HeaderIdempotencyKey), req)
	if err != nil {
		var dup *service.DuplicateOrderError
		if errors.As(err, &dup) {
			l.Warn("create_order_error", "status", http.StatusConflict, "reason", "duplicate idempotency key", "order_id", dup.OrderID)
			return c.JSON(http.StatusConflict, transport.ConflictResponse{Message: "Order already placed", OrderID: dup.OrderID})
		}
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "total", o.TotalPrice)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := parseID(c, l, "get_order_error")
	if err != nil {
		return err
	}
	o, err := h.Svc.GetOrder(ctx, id, caller(c))
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) PayOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.pay")

	id, err := parseID(c, l, "pay_order_error")
	if err != nil {
		return err
	}
	var req transport.PayOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("pay_order_error", "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	o, err := h.Svc.PayOrder(ctx, id, caller(c), req)
	if err != nil {
		return fail(l, "pay_order_error", err)
	}

	l.Info("pay_order_success", "order_id", id)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) DeliverOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.deliver")

	id, err := parseID(c, l, "deliver_order_error")
	if err != nil {
		return err
	}
	o, err := h.Svc.DeliverOrder(ctx, id)
	if err != nil {
		return fail(l, "deliver_order_error", err)
	}

	l.Info("deliver_order_success", "order_id", id)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.mine")

	orders, err := h.Svc.MyOrders(ctx, caller(c))
	if err != nil {
		return fail(l, "my_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Svc.ListOrders(ctx)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}
