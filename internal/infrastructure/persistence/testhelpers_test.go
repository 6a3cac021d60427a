package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/catalog"
	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database with the schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newMockDB opens a postgres-dialect gorm DB over sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func createTestProduct(t *testing.T, repo *GormProductRepository, name string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:  name,
		Price: decimal.NewFromInt(120),
	}, stock)
	require.NoError(t, err)
	require.NoError(t, repo.Save(t.Context(), p))
	return p
}

// createTestOrder persists a fresh order; offset keeps order numbers unique
func createTestOrder(t *testing.T, repo *GormOrderRepository, customerID int64, offset time.Duration) *order.Order {
	t.Helper()
	o, err := order.NewOrder(customerID, order.DeliveryContact{
		Name:    "Asha",
		Email:   "asha@example.com",
		Mobile:  "9876543210",
		Address: "12 MG Road, Bangalore",
		Pincode: "560001",
	}, order.PaymentCashOnDelivery, []order.ItemLine{
		{ProductID: 10, ProductName: "Turmeric", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{ProductID: 11, ProductName: "Ghee", Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	}, baseTime.Add(offset))
	require.NoError(t, err)
	require.NoError(t, repo.Save(t.Context(), o))
	return o
}
