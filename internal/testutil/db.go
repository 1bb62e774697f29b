package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/pkg/db"
)

const PostgresEnv = "STORE_TEST_DATABASE_URL"

var tables = []string{"order_items", "orders", "reviews", "products", "refresh_tokens", "users"}

// SQLite returns a migrated in-memory database private to the calling test.
func SQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb, models.All()...))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// Postgres connects to the database named by STORE_TEST_DATABASE_URL, or skips
// the test when it is unset. Tables are emptied before the test runs.
func Postgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv(PostgresEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresEnv)
	}
	gdb, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb, models.All()...))
	Truncate(t, gdb)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func Truncate(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	quoted := make([]string, 0, len(tables))
	for _, name := range tables {
		quoted = append(quoted, pq.QuoteIdentifier(name))
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
	require.NoError(t, gdb.Exec(query).Error)
}
