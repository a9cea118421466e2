package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS product (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    uuid.New(),
		Title: "Widget",
		Price: decimal.RequireFromString("5.00"),
		Stock: stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func currentStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func TestDecrementConcurrentAttemptsNeverOversell(t *testing.T) {
	db := setupLedgerTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// single connection so sqlite serializes the writes instead of
	// returning SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)

	ledger := NewLedger(db)
	product := seedProduct(t, db, 5)

	const attempts = 16
	var successes int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Decrement(context.Background(), product.ID, 1)
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case errors.Is(err, ErrInsufficientStock):
			default:
				t.Errorf("unexpected decrement error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, successes)
	assert.Equal(t, 0, currentStock(t, db, product.ID))
}

func TestDecrementSucceedsWhenStockCovers(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	product := seedProduct(t, db, 10)

	require.NoError(t, ledger.Decrement(context.Background(), product.ID, 4))
	assert.Equal(t, 6, currentStock(t, db, product.ID))

	require.NoError(t, ledger.Decrement(context.Background(), product.ID, 6))
	assert.Equal(t, 0, currentStock(t, db, product.ID))
}

func TestDecrementFailsWithoutMutation(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	product := seedProduct(t, db, 3)

	err := ledger.Decrement(context.Background(), product.ID, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, currentStock(t, db, product.ID))
}

func TestDecrementUnknownProduct(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)

	err := ledger.Decrement(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestRestock(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	product := seedProduct(t, db, 2)

	require.NoError(t, ledger.Restock(context.Background(), product.ID, 5))
	assert.Equal(t, 7, currentStock(t, db, product.ID))

	assert.ErrorIs(t, ledger.Restock(context.Background(), uuid.New(), 1), gorm.ErrRecordNotFound)
}

func TestGetForCheckout(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	a := seedProduct(t, db, 2)
	b := seedProduct(t, db, 4)

	found, err := ledger.GetForCheckout(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 2, found[a.ID].Stock)
	assert.Equal(t, 4, found[b.ID].Stock)
}
