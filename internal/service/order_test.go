package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/internal/testutil"
	"github.com/Skotchmaster/camera_shop/internal/transport"
)

var shipping = models.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}

func orderReq(items ...transport.CreateOrderItem) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{OrderItems: items, ShippingAddress: shipping, PaymentMethod: "PayPal"}
}

func TestOrderService_CreateOrder_PricesFromDatabase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.DB, "ann@example.com", models.RoleUser)
	body := testutil.CreateProduct(t, env.DB, "Canon R6", 40, 5)
	lens := testutil.CreateProduct(t, env.DB, "Canon RF 50mm", 9.99, 5)

	req := orderReq(
		transport.CreateOrderItem{ProductID: body.ID, Qty: 2},
		transport.CreateOrderItem{ProductID: lens.ID, Qty: 1},
	)
	req.ItemsPrice, req.TotalPrice = 0.01, 0.01

	o, err := env.Orders.CreateOrder(ctx, Caller{ID: user.ID}, "", req)
	require.NoError(t, err)
	assert.Equal(t, 89.99, o.ItemsPrice)
	assert.Equal(t, 13.5, o.TaxPrice)
	assert.Equal(t, 10.0, o.ShippingPrice)
	assert.Equal(t, 113.49, o.TotalPrice)
	require.Len(t, o.OrderItems, 2)
	assert.Equal(t, "Canon R6", o.OrderItems[0].Name)
	assert.Equal(t, "/images/canon-r6.jpg", o.OrderItems[0].Image)

	assert.Equal(t, 3, testutil.Stock(t, env.DB, body))
	assert.Equal(t, 4, testutil.Stock(t, env.DB, lens))

	events := env.Events.Events(mykafka.TopicOrders)
	require.Len(t, events, 1)
	assert.Equal(t, "order_created", events[0].Event["type"])
}

func TestOrderService_CreateOrder_NoPartialDecrement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.DB, "ann@example.com", models.RoleUser)
	plenty := testutil.CreateProduct(t, env.DB, "Panasonic S5", 1999, 10)
	scarce := testutil.CreateProduct(t, env.DB, "Leica M11", 8995, 1)

	_, err := env.Orders.CreateOrder(ctx, Caller{ID: user.ID}, "", orderReq(
		transport.CreateOrderItem{ProductID: plenty.ID, Qty: 3},
		transport.CreateOrderItem{ProductID: scarce.ID, Qty: 2},
	))
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Leica M11")

	assert.Equal(t, 10, testutil.Stock(t, env.DB, plenty))
	assert.Equal(t, 1, testutil.Stock(t, env.DB, scarce))
	assert.Empty(t, env.Events.Events(mykafka.TopicOrders))
}

func TestOrderService_CreateOrder_IdempotencyKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.DB, "ann@example.com", models.RoleUser)
	other := testutil.CreateUser(t, env.DB, "bob@example.com", models.RoleUser)
	p := testutil.CreateProduct(t, env.DB, "Sony ZV-1", 749, 1)
	req := orderReq(transport.CreateOrderItem{ProductID: p.ID, Qty: 1})

	first, err := env.Orders.CreateOrder(ctx, Caller{ID: user.ID}, "checkout-1", req)
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.Stock(t, env.DB, p))

	_, err = env.Orders.CreateOrder(ctx, Caller{ID: user.ID}, "checkout-1", req)
	require.ErrorIs(t, err, ErrConflict)
	var dup *DuplicateOrderError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.OrderID)
	assert.Equal(t, 0, testutil.Stock(t, env.DB, p))

	_, err = env.Orders.CreateOrder(ctx, Caller{ID: user.ID}, "", req)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = env.Orders.CreateOrder(ctx, Caller{ID: other.ID}, "checkout-1", req)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 0, testutil.Stock(t, env.DB, p))
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	caller := Caller{ID: uuid.New()}

	tests := []struct {
		name string
		req  transport.CreateOrderRequest
		want error
	}{
		{"no items", orderReq(), ErrValidation},
		{"zero qty", orderReq(transport.CreateOrderItem{ProductID: uuid.New(), Qty: 0}), ErrValidation},
		{"nil product", orderReq(transport.CreateOrderItem{Qty: 1}), ErrValidation},
		{"unknown product", orderReq(transport.CreateOrderItem{ProductID: uuid.New(), Qty: 1}), ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Orders.CreateOrder(ctx, caller, "", tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOrderService_AccessAndTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.DB, "ann@example.com", models.RoleUser)
	stranger := testutil.CreateUser(t, env.DB, "bob@example.com", models.RoleUser)
	admin := testutil.CreateUser(t, env.DB, "root@example.com", models.RoleAdmin)
	p := testutil.CreateProduct(t, env.DB, "Nikon Z6 III", 2499, 5)

	o, err := env.Orders.CreateOrder(ctx, Caller{ID: owner.ID}, "", orderReq(transport.CreateOrderItem{ProductID: p.ID, Qty: 1}))
	require.NoError(t, err)

	got, err := env.Orders.GetOrder(ctx, o.ID, Caller{ID: owner.ID, Role: models.RoleUser})
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, owner.Email, got.User.Email)

	_, err = env.Orders.GetOrder(ctx, o.ID, Caller{ID: stranger.ID, Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.Orders.PayOrder(ctx, o.ID, Caller{ID: stranger.ID, Role: models.RoleUser}, transport.PayOrderRequest{ID: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.Orders.GetOrder(ctx, o.ID, Caller{ID: admin.ID, Role: models.RoleAdmin})
	require.NoError(t, err)

	delivered, err := env.Orders.DeliverOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.False(t, delivered.IsPaid)

	paid, err := env.Orders.PayOrder(ctx, o.ID, Caller{ID: owner.ID, Role: models.RoleUser}, transport.PayOrderRequest{
		ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2024-01-01T00:00:00Z", EmailAddress: "ann@example.com",
	})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentResult)
	assert.Equal(t, "PAY-1", paid.PaymentResult.ID)
	assert.Equal(t, "ann@example.com", paid.PaymentResult.EmailAddress)

	_, err = env.Orders.PayOrder(ctx, uuid.New(), Caller{ID: admin.ID, Role: models.RoleAdmin}, transport.PayOrderRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.Orders.DeliverOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := env.Orders.MyOrders(ctx, Caller{ID: owner.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := env.Orders.MyOrders(ctx, Caller{ID: stranger.ID})
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := env.Orders.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].User)
}

func TestOrderService_CreateOrder_ReindexesStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	idx := &stockIndex{}
	env.Orders.Index = idx
	user := testutil.CreateUser(t, env.DB, "ann@example.com", models.RoleUser)
	body := testutil.CreateProduct(t, env.DB, "Fujifilm X-T5", 1699, 4)
	lens := testutil.CreateProduct(t, env.DB, "XF 33mm", 799, 2)

	_, err := env.Orders.CreateOrder(ctx, Caller{ID: user.ID}, "", orderReq(
		transport.CreateOrderItem{ProductID: body.ID, Qty: 3},
		transport.CreateOrderItem{ProductID: lens.ID, Qty: 1},
	))
	require.NoError(t, err)

	n, ok := idx.Stock(body.ID)
	require.True(t, ok)
	assert.Equal(t, 1, n)
	n, ok = idx.Stock(lens.ID)
	require.True(t, ok)
	assert.Equal(t, 1, n)

	_, err = env.Orders.CreateOrder(ctx, Caller{ID: user.ID}, "", orderReq(
		transport.CreateOrderItem{ProductID: lens.ID, Qty: 5},
	))
	require.ErrorIs(t, err, ErrInsufficientStock)
	n, _ = idx.Stock(lens.ID)
	assert.Equal(t, 1, n)
}
