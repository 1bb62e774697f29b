package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/app"
	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/internal/testutil"
)

type cli struct {
	t       *testing.T
	api     string
	session string
}

func newCLI(t *testing.T) (*cli, *gorm.DB) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	gdb := testutil.SQLite(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(app.New(gdb, testutil.Config(), log, app.Backends{Events: &mykafka.Recorder{}}))
	t.Cleanup(srv.Close)
	return &cli{t: t, api: srv.URL, session: filepath.Join(t.TempDir(), "session.json")}, gdb
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd(viper.New())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--api", c.api, "--session", c.session}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestShopctl_ShoppingFlow(t *testing.T) {
	c, gdb := newCLI(t)
	p := testutil.CreateProduct(t, gdb, "Fujifilm X-T5", 1699, 3)

	out := c.mustRun("products", "list", "--keyword", "fuji")
	assert.Contains(t, out, "Fujifilm X-T5")
	assert.Contains(t, out, "$1699.00")

	out = c.mustRun("register", "--name", "Ann", "--email", "ann@example.com", "--password", "Secret123")
	assert.Contains(t, out, "Welcome, Ann")

	c.mustRun("cart", "add", p.ID.String(), "--qty", "2")
	c.mustRun("cart", "shipping", "--address", "1 Main St", "--city", "Springfield", "--postal-code", "12345", "--country", "US")
	c.mustRun("cart", "payment", "PayPal")
	out = c.mustRun("cart", "show")
	assert.Contains(t, out, "Subtotal (2 items): $3398.00")
	assert.Contains(t, out, "Payment: PayPal")

	out = c.mustRun("checkout")
	assert.Contains(t, out, "Total $3907.70")
	assert.Equal(t, 1, testutil.Stock(t, gdb, p))

	out = c.mustRun("cart", "show")
	assert.Contains(t, out, "Your cart is empty")

	out = c.mustRun("orders", "mine")
	assert.Contains(t, out, "$3907.70")

	_, err := c.run("admin", "orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	c.mustRun("cart", "add", p.ID.String())
	c.mustRun("logout")
	out = c.mustRun("cart", "show")
	assert.Contains(t, out, "Fujifilm X-T5")

	_, err = c.run("orders", "mine")
	assert.Error(t, err)
}

func TestShopctl_AdminDeliver(t *testing.T) {
	c, gdb := newCLI(t)
	testutil.CreateUser(t, gdb, "root@example.com", models.RoleAdmin)
	buyer := testutil.CreateUser(t, gdb, "ann@example.com", models.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Sony A6700", 1399, 2)
	o := testutil.CreateOrder(t, gdb, buyer, p, 1)

	c.mustRun("login", "--email", "root@example.com", "--password", testutil.Password)
	out := c.mustRun("admin", "orders")
	assert.Contains(t, out, o.ID.String())

	out = c.mustRun("admin", "deliver", o.ID.String())
	assert.Contains(t, out, "delivered")

	_, err := c.run("admin", "deliver", "not-an-id")
	assert.Error(t, err)
}

func TestShopctl_Profile(t *testing.T) {
	c, gdb := newCLI(t)
	testutil.CreateUser(t, gdb, "ann@example.com", models.RoleUser)

	_, err := c.run("profile", "show")
	require.Error(t, err)

	c.mustRun("login", "--email", "ann@example.com", "--password", testutil.Password)
	out := c.mustRun("profile", "show")
	assert.Contains(t, out, "<ann@example.com>")

	_, err = c.run("profile", "update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	out = c.mustRun("profile", "update", "--name", "Ann Lee", "--password", "NewSecret456")
	assert.Contains(t, out, "Profile updated: Ann Lee <ann@example.com>")

	out = c.mustRun("profile", "show")
	assert.Contains(t, out, "Ann Lee <ann@example.com>")

	c.mustRun("logout")
	c.mustRun("login", "--email", "ann@example.com", "--password", "NewSecret456")
}

func TestShopctl_AdminUsersAndProducts(t *testing.T) {
	c, gdb := newCLI(t)
	testutil.CreateUser(t, gdb, "root@example.com", models.RoleAdmin)
	bob := testutil.CreateUser(t, gdb, "bob@example.com", models.RoleUser)

	c.mustRun("login", "--email", "root@example.com", "--password", testutil.Password)

	out := c.mustRun("admin", "users", "list")
	assert.Contains(t, out, "bob@example.com")
	assert.Contains(t, out, "root@example.com")

	out = c.mustRun("admin", "users", "update", bob.ID.String(), "--role", "admin")
	assert.Contains(t, out, "role: admin")

	out = c.mustRun("admin", "users", "delete", bob.ID.String())
	assert.Contains(t, out, "removed")
	out = c.mustRun("admin", "users", "list")
	assert.NotContains(t, out, "bob@example.com")

	out = c.mustRun("admin", "products", "create",
		"--name", "Nikon Z8", "--price", "3999.95", "--description", "Stacked sensor",
		"--category", "mirrorless", "--brand", "nikon", "--stock", "2", "--feature", "8K video")
	assert.Contains(t, out, "Nikon Z8")
	assert.Contains(t, out, "$3999.95")

	var p models.Product
	require.NoError(t, gdb.First(&p, "slug = ?", "nikon-z8").Error)
	assert.Equal(t, 2, p.Stock)

	_, err := c.run("admin", "products", "update", p.ID.String())
	require.Error(t, err)

	out = c.mustRun("admin", "products", "update", p.ID.String(), "--stock", "5", "--price", "3799")
	assert.Contains(t, out, "stock 5")
	assert.Contains(t, out, "$3799.00")

	_, err = c.run("admin", "products", "create", "--name", "No Brand", "--price", "10", "--description", "x", "--category", "compact", "--brand", "kodak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")

	out = c.mustRun("admin", "products", "delete", p.ID.String())
	assert.Contains(t, out, "removed")
	out = c.mustRun("products", "list")
	assert.Contains(t, out, "No products found")
}
