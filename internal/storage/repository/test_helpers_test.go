package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/software-billing/internal/migrations"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "failed to apply migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreatePerson создает клиента-физлицо
func (f *TestDataFactory) CreatePerson(t *testing.T, pesel string) int64 {
	id, err := f.storage.CreateClient(context.Background(), models.Client{
		Kind:     models.ClientPersonal,
		Contact:  models.Contact{Email: pesel + "@example.com", Phone: "+48500100200", Address: "Warszawa"},
		Personal: &models.Personal{FirstName: "Jan", LastName: "Kowalski", Pesel: pesel},
	})
	require.NoError(t, err)
	return id
}

// CreateProductVersion создает продукт с одной версией и возвращает ID продукта и версии
func (f *TestDataFactory) CreateProductVersion(t *testing.T, name string, price string) (int64, int64) {
	ctx := context.Background()
	productID, err := f.storage.CreateProduct(ctx, models.Product{Name: name, Category: "test"})
	require.NoError(t, err)
	versionID, err := f.storage.CreateProductVersion(ctx, models.ProductVersion{
		ProductID:   productID,
		Version:     "1.0",
		YearlyPrice: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return productID, versionID
}

// CreateContract создает неподписанный договор
func (f *TestDataFactory) CreateContract(t *testing.T, clientID, versionID int64, price string, start time.Time) int64 {
	id, err := f.storage.CreateContract(context.Background(), models.Contract{
		ClientID:         clientID,
		ProductVersionID: versionID,
		StartDate:        start,
		EndDate:          start.AddDate(0, 0, 10),
		Price:            decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return id
}

// CreateSubscription создает активную месячную подписку
func (f *TestDataFactory) CreateSubscription(t *testing.T, clientID, productID int64, price string, start time.Time) int64 {
	id, err := f.storage.CreateSubscription(context.Background(), models.Subscription{
		ClientID:      clientID,
		ProductID:     productID,
		StartDate:     start,
		RenewalPeriod: 1,
		Price:         decimal.RequireFromString(price),
		Active:        true,
	})
	require.NoError(t, err)
	return id
}
