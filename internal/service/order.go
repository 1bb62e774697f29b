package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/es"
	"github.com/Skotchmaster/camera_shop/internal/logging"
	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/internal/pricing"
	"github.com/Skotchmaster/camera_shop/internal/repo"
	"github.com/Skotchmaster/camera_shop/internal/transport"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Index  es.ProductIndex
	Events mykafka.Publisher
	Rates  pricing.Rates
	Now    func() time.Time
}

func NewOrderService(r *repo.GormRepo, index es.ProductIndex, events mykafka.Publisher, rates pricing.Rates) *OrderService {
	if index == nil {
		index = es.Nop{}
	}
	if events == nil {
		events = mykafka.Nop{}
	}
	return &OrderService{Repo: r, Index: index, Events: events, Rates: rates, Now: func() time.Time { return time.Now().UTC() }}
}

// CreateOrder prices the order from stored product data and takes stock for
// every line in one transaction. Either every line is reserved or nothing is.
func (s *OrderService) CreateOrder(ctx context.Context, caller Caller, idemKey string, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", caller.ID)

	if len(req.OrderItems) == 0 {
		return nil, fmt.Errorf("%w: No order items", ErrValidation)
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, fmt.Errorf("%w: paymentMethod is required", ErrValidation)
	}
	for _, it := range req.OrderItems {
		if it.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: productId required", ErrValidation)
		}
		if it.Qty < 1 {
			return nil, fmt.Errorf("%w: qty must be >= 1", ErrValidation)
		}
	}

	var key *string
	if k := strings.TrimSpace(idemKey); k != "" {
		key = &k
	}

	ids := make([]uuid.UUID, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		ids = append(ids, it.ProductID)
	}

	var order *models.Order
	err := s.Repo.WithTransaction(ctx, func(tx *repo.GormRepo) error {
		if key != nil {
			existing, err := tx.FindOrderByIdempotencyKey(ctx, caller.ID, *key)
			if err == nil {
				return &DuplicateOrderError{OrderID: existing.ID}
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		products, err := tx.GetProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		items := make([]models.OrderItem, 0, len(req.OrderItems))
		lines := make([]pricing.Line, 0, len(req.OrderItems))
		for _, it := range req.OrderItems {
			p, ok := byID[it.ProductID]
			if !ok {
				return fmt.Errorf("%w: Product %s not found", ErrNotFound, it.ProductID)
			}
			taken, err := tx.DecrementStock(ctx, p.ID, it.Qty)
			if err != nil {
				return err
			}
			if !taken {
				return fmt.Errorf("%w: Not enough stock for %s", ErrInsufficientStock, p.Name)
			}
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Qty:       it.Qty,
				Image:     firstImage(p),
				Price:     p.Price,
			})
			lines = append(lines, pricing.Line{Price: p.Price, Qty: it.Qty})
		}

		totals := pricing.Compute(lines, s.Rates)
		client := pricing.Totals{Items: req.ItemsPrice, Tax: req.TaxPrice, Shipping: req.ShippingPrice, Total: req.TotalPrice}
		if pricing.Mismatch(client, totals) {
			l.Warn("client_price_mismatch", "reason", "client totals ignored", "client_total", req.TotalPrice, "server_total", totals.Total)
		}

		order = &models.Order{
			UserID:          caller.ID,
			OrderItems:      items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			ItemsPrice:      totals.Items,
			TaxPrice:        totals.Tax,
			ShippingPrice:   totals.Shipping,
			TotalPrice:      totals.Total,
			IdempotencyKey:  key,
		}
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		if key != nil && repo.IsUniqueViolation(err) {
			if existing, ferr := s.Repo.FindOrderByIdempotencyKey(ctx, caller.ID, *key); ferr == nil {
				return nil, &DuplicateOrderError{OrderID: existing.ID}
			}
		}
		return nil, err
	}

	s.reindexStock(ctx, ids)
	s.publish(ctx, "order_created", order)
	return order, nil
}

// reindexStock refreshes the search documents of products whose stock changed.
func (s *OrderService) reindexStock(ctx context.Context, ids []uuid.UUID) {
	if _, ok := s.Index.(es.Nop); ok {
		return
	}
	l := logging.FromContext(ctx)
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		l.Warn("search_index_error", "op", "reload", "error", err)
		return
	}
	for i := range products {
		if err := s.Index.IndexProduct(ctx, &products[i]); err != nil {
			l.Warn("search_index_error", "op", "index", "product_id", products[i].ID, "error", err)
		}
	}
}

func firstImage(p models.Product) string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// GetOrder returns the order to its owner or an admin.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID, caller Caller) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "Order")
	}
	if o.UserID != caller.ID && !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: Not authorized", ErrForbidden)
	}
	return o, nil
}

func (s *OrderService) PayOrder(ctx context.Context, id uuid.UUID, caller Caller, req transport.PayOrderRequest) (*models.Order, error) {
	if _, err := s.GetOrder(ctx, id, caller); err != nil {
		return nil, err
	}
	result := models.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	}
	if err := s.Repo.MarkOrderPaid(ctx, id, result, s.Now()); err != nil {
		return nil, notFound(err, "Order")
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "Order")
	}
	s.publish(ctx, "order_paid", o)
	return o, nil
}

// DeliverOrder does not require the order to be paid first.
func (s *OrderService) DeliverOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if err := s.Repo.MarkOrderDelivered(ctx, id, s.Now()); err != nil {
		return nil, notFound(err, "Order")
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "Order")
	}
	s.publish(ctx, "order_delivered", o)
	return o, nil
}

func (s *OrderService) MyOrders(ctx context.Context, caller Caller) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, caller.ID)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}

func (s *OrderService) publish(ctx context.Context, eventType string, o *models.Order) {
	items := make([]map[string]any, 0, len(o.OrderItems))
	for _, it := range o.OrderItems {
		items = append(items, map[string]any{"productID": it.ProductID, "qty": it.Qty, "price": it.Price})
	}
	event := map[string]any{
		"type":        eventType,
		"orderID":     o.ID,
		"userID":      o.UserID,
		"items":       items,
		"totalPrice":  o.TotalPrice,
		"isPaid":      o.IsPaid,
		"isDelivered": o.IsDelivered,
		"at":          s.Now(),
	}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicOrders, o.ID.String(), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", mykafka.TopicOrders, "error", err)
	}
}
