package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/software-billing/internal/lib/apperr"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateProduct(ctx context.Context, p models.Product) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ProductExists(ctx context.Context, productID int64) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) CreateProductVersion(ctx context.Context, v models.ProductVersion) (int64, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CreateDiscount(ctx context.Context, d models.Discount) (int64, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ListDiscounts(ctx context.Context, category models.DiscountCategory) ([]models.Discount, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Discount), args.Error(1)
}

type InvalidatorMock struct{ mock.Mock }

func (m *InvalidatorMock) Invalidate(category models.DiscountCategory) {
	m.Called(category)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var day = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCatalogService_CreateDiscount(t *testing.T) {
	ctx := context.Background()
	product := int64(3)

	tests := []struct {
		name    string
		d       models.Discount
		wantErr error
	}{
		{
			name: "valid upfront discount",
			d: models.Discount{Name: "spring", Category: models.DiscountUpfront, Percentage: decimal.NewFromInt(10),
				StartDate: day, EndDate: day.AddDate(0, 1, 0)},
		},
		{
			name: "unknown category",
			d: models.Discount{Name: "x", Category: "seasonal", Percentage: decimal.NewFromInt(10),
				StartDate: day, EndDate: day},
			wantErr: apperr.ErrInvalidDiscount,
		},
		{
			name: "percentage above hundred",
			d: models.Discount{Name: "x", Category: models.DiscountUpfront, Percentage: decimal.NewFromInt(101),
				StartDate: day, EndDate: day},
			wantErr: apperr.ErrInvalidDiscount,
		},
		{
			name: "inverted window",
			d: models.Discount{Name: "x", Category: models.DiscountUpfront, Percentage: decimal.NewFromInt(5),
				StartDate: day, EndDate: day.AddDate(0, 0, -1)},
			wantErr: apperr.ErrInvalidDiscount,
		},
		{
			name: "loyalty scoped to product",
			d: models.Discount{Name: "x", Category: models.DiscountLoyalty, Percentage: decimal.NewFromInt(5),
				ProductID: &product, StartDate: day, EndDate: day},
			wantErr: apperr.ErrInvalidDiscount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			inv := new(InvalidatorMock)
			svc := NewCatalogService(repo, inv, newNoopLogger())
			repo.On("CreateDiscount", ctx, tt.d).Return(int64(9), nil).Maybe()
			inv.On("Invalidate", tt.d.Category).Return().Maybe()

			got, err := svc.CreateDiscount(ctx, tt.d)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				inv.AssertNotCalled(t, "Invalidate", mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(9), got.ID)
			inv.AssertCalled(t, "Invalidate", models.DiscountUpfront)
		})
	}
}

func TestCatalogService_AddVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown product", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewCatalogService(repo, new(InvalidatorMock), newNoopLogger())
		repo.On("ProductExists", ctx, int64(3)).Return(false, nil)

		_, err := svc.AddVersion(ctx, models.ProductVersion{ProductID: 3, Version: "1.0", YearlyPrice: decimal.NewFromInt(100)})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("created", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewCatalogService(repo, new(InvalidatorMock), newNoopLogger())
		v := models.ProductVersion{ProductID: 3, Version: "1.0", YearlyPrice: decimal.NewFromInt(100)}
		repo.On("ProductExists", ctx, int64(3)).Return(true, nil)
		repo.On("CreateProductVersion", ctx, v).Return(int64(4), nil)

		got, err := svc.AddVersion(ctx, v)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.ID)
	})
}

func TestCatalogService_ListDiscounts_UnknownCategory(t *testing.T) {
	svc := NewCatalogService(new(RepoMock), new(InvalidatorMock), newNoopLogger())
	_, err := svc.ListDiscounts(context.Background(), "weekly")
	assert.ErrorIs(t, err, apperr.ErrInvalidDiscount)
}
