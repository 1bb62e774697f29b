package storefront

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

const DefaultProductImage = "/images/default-product.jpg"

var ErrInvalidQty = errors.New("quantity must be at least 1")

type CartItem struct {
	ProductID    uuid.UUID `json:"product"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	Price        float64   `json:"price"`
	CountInStock int       `json:"countInStock"`
	Qty          int       `json:"qty"`
}

// ItemFromProduct snapshots p as a cart line.
func ItemFromProduct(p *models.Product, qty int) CartItem {
	img := DefaultProductImage
	if len(p.Images) > 0 && p.Images[0].URL != "" {
		img = p.Images[0].URL
	}
	return CartItem{ProductID: p.ID, Name: p.Name, Image: img, Price: p.Price, CountInStock: p.Stock, Qty: qty}
}

// Cart is the checkout draft. Every mutation is written through to the
// session store.
type Cart struct {
	mu       sync.RWMutex
	store    SessionStore
	items    []CartItem
	shipping models.ShippingAddress
	payment  string
}

// NewCart hydrates the cart from store.
func NewCart(store SessionStore) (*Cart, error) {
	c := &Cart{store: store}
	if _, err := store.Get(KeyCartItems, &c.items); err != nil {
		return nil, err
	}
	if _, err := store.Get(KeyShippingAddress, &c.shipping); err != nil {
		return nil, err
	}
	if _, err := store.Get(KeyPaymentMethod, &c.payment); err != nil {
		return nil, err
	}
	return c, nil
}

// Add replaces the line for the same product or appends a new one.
func (c *Cart) Add(item CartItem) error {
	if item.Qty < 1 {
		return ErrInvalidQty
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.IndexFunc(c.items, func(it CartItem) bool { return it.ProductID == item.ProductID }); i >= 0 {
		c.items[i] = item
	} else {
		c.items = append(c.items, item)
	}
	return c.store.Set(KeyCartItems, c.items)
}

func (c *Cart) Remove(productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.DeleteFunc(c.items, func(it CartItem) bool { return it.ProductID == productID })
	return c.store.Set(KeyCartItems, c.items)
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return c.store.Delete(KeyCartItems)
}

func (c *Cart) SaveShippingAddress(a models.ShippingAddress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shipping = a
	return c.store.Set(KeyShippingAddress, a)
}

func (c *Cart) SavePaymentMethod(method string) error {
	if method == "" {
		return fmt.Errorf("payment method is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payment = method
	return c.store.Set(KeyPaymentMethod, method)
}

// forgetCheckout drops the shipping address and payment method in memory.
// The session keys are removed by the caller.
func (c *Cart) forgetCheckout() {
	c.mu.Lock()
	c.shipping = models.ShippingAddress{}
	c.payment = ""
	c.mu.Unlock()
}

func (c *Cart) Items() []CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Cart) ShippingAddress() models.ShippingAddress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.shipping
}

func (c *Cart) PaymentMethod() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.payment
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, it := range c.items {
		n += it.Qty
	}
	return n
}

// Subtotal sums price*qty, rounded to cents.
func (c *Cart) Subtotal() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum.Round(2).InexactFloat64()
}
