package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/es"
	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/internal/pricing"
	"github.com/Skotchmaster/camera_shop/internal/repo"
	"github.com/Skotchmaster/camera_shop/internal/testutil"
)

type testEnv struct {
	DB      *gorm.DB
	Events  *mykafka.Recorder
	Catalog *CatalogService
	Orders  *OrderService
	Users   *UserService
}

var testRates = pricing.Rates{TaxRate: 0.15, ShippingFee: 10, FreeShippingOver: 100}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := testutil.SQLite(t)
	r := repo.New(gdb)
	events := &mykafka.Recorder{}
	return &testEnv{
		DB:      gdb,
		Events:  events,
		Catalog: NewCatalogService(r, nil, events),
		Orders:  NewOrderService(r, nil, events, testRates),
		Users:   NewUserService(r, events, []byte("access"), []byte("refresh"), time.Hour, 24*time.Hour),
	}
}

// stockIndex records the stock of every indexed document.
type stockIndex struct {
	es.Nop
	mu    sync.Mutex
	stock map[uuid.UUID]int
}

func (x *stockIndex) IndexProduct(_ context.Context, p *models.Product) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.stock == nil {
		x.stock = map[uuid.UUID]int{}
	}
	x.stock[p.ID] = p.Stock
	return nil
}

func (x *stockIndex) Stock(id uuid.UUID) (int, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	n, ok := x.stock[id]
	return n, ok
}
