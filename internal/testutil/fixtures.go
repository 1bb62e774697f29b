package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/config"
	"github.com/Skotchmaster/camera_shop/internal/hash"
	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/pkg/tokens"
)

const Password = "Secret123"

func CreateUser(t *testing.T, gdb *gorm.DB, email, role string) *models.User {
	t.Helper()
	pw, err := hash.HashPassword(Password)
	require.NoError(t, err)
	u := &models.User{Name: "User " + email, Email: email, PasswordHash: pw, Role: role}
	require.NoError(t, gdb.WithContext(context.Background()).Create(u).Error)
	return u
}

func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Price:       price,
		Description: fmt.Sprintf("%s description", name),
		Category:    "mirrorless",
		Brand:       "sony",
		Stock:       stock,
		Images:      []models.Image{{URL: "/images/" + models.Slugify(name) + ".jpg", Alt: name}},
	}
	require.NoError(t, gdb.WithContext(context.Background()).Omit("Reviews").Create(p).Error)
	return p
}

func Stock(t *testing.T, gdb *gorm.DB, p *models.Product) int {
	t.Helper()
	var got models.Product
	require.NoError(t, gdb.First(&got, "id = ?", p.ID).Error)
	return got.Stock
}

// Config is a server configuration suitable for tests.
func Config() config.Config {
	return config.Config{
		ServiceName:      "camera_shop_test",
		Env:              "test",
		JWTAccessSecret:  []byte("test-access-secret"),
		JWTRefreshSecret: []byte("test-refresh-secret"),
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  24 * time.Hour,
		ESIndex:          "products",
		TaxRate:          0.15,
		ShippingFee:      10,
		FreeShippingOver: 100,
	}
}

// Token signs an access token for u with the secret from Config.
func Token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := tokens.SignAccess(Config().JWTAccessSecret, u.ID.String(), u.Role, u.Name, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

// CreateOrder stores an unpaid order of qty x p for u without touching stock.
func CreateOrder(t *testing.T, gdb *gorm.DB, u *models.User, p *models.Product, qty int) *models.Order {
	t.Helper()
	items := float64(qty) * p.Price
	o := &models.Order{
		UserID:          u.ID,
		OrderItems:      []models.OrderItem{{ProductID: p.ID, Name: p.Name, Qty: qty, Price: p.Price}},
		ShippingAddress: models.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		PaymentMethod:   "PayPal",
		ItemsPrice:      items,
		TotalPrice:      items,
	}
	require.NoError(t, gdb.WithContext(context.Background()).Omit("User").Create(o).Error)
	return o
}
