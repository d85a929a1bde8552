package revenue

import (
	"context"
	"errors"
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

func (m *RepoMock) SumContractPayments(ctx context.Context, filter models.RevenueFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *RepoMock) SumSubscriptionPayments(ctx context.Context, filter models.RevenueFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *RepoMock) OpenContracts(ctx context.Context, productID *int64, at time.Time) ([]models.Contract, error) {
	args := m.Called(ctx, productID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contract), args.Error(1)
}

func (m *RepoMock) ActiveSubscriptions(ctx context.Context, productID *int64) ([]models.Subscription, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

type LoyaltyMock struct{ mock.Mock }

func (m *LoyaltyMock) ResolveLoyaltyPercent(ctx context.Context, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type RatesMock struct{ mock.Mock }

func (m *RatesMock) Rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newService() (*RevenueService, *RepoMock, *LoyaltyMock, *RatesMock) {
	repo := new(RepoMock)
	loyalty := new(LoyaltyMock)
	rates := new(RatesMock)
	return NewRevenueService(repo, loyalty, rates, "pln", newNoopLogger()), repo, loyalty, rates
}

func TestRevenueService_Actual(t *testing.T) {
	ctx := context.Background()

	t.Run("empty window", func(t *testing.T) {
		svc, repo, _, _ := newService()
		_, err := svc.Actual(ctx, models.RevenueFilter{From: now, To: now})
		assert.ErrorIs(t, err, apperr.ErrInvalidRange)
		repo.AssertNotCalled(t, "SumContractPayments", mock.Anything, mock.Anything)
	})

	t.Run("inverted window", func(t *testing.T) {
		svc, _, _, _ := newService()
		_, err := svc.Actual(ctx, models.RevenueFilter{From: now, To: now.AddDate(0, 0, -1)})
		assert.ErrorIs(t, err, apperr.ErrInvalidRange)
	})

	t.Run("sums contracts and subscriptions", func(t *testing.T) {
		svc, repo, _, _ := newService()
		filter := models.RevenueFilter{From: now.AddDate(0, -1, 0), To: now}
		repo.On("SumContractPayments", ctx, filter).Return(dec("100"), nil)
		repo.On("SumSubscriptionPayments", ctx, filter).Return(dec("50"), nil)

		got, err := svc.Actual(ctx, filter)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("150")), "got %s", got)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, repo, _, _ := newService()
		filter := models.RevenueFilter{From: now.AddDate(0, -1, 0), To: now}
		repo.On("SumContractPayments", ctx, filter).Return(decimal.Zero, errors.New("db down"))

		_, err := svc.Actual(ctx, filter)
		assert.Error(t, err)
	})
}

func TestRevenueService_Predicted(t *testing.T) {
	ctx := context.Background()
	svc, repo, loyalty, _ := newService()

	repo.On("OpenContracts", ctx, (*int64)(nil), now).Return([]models.Contract{
		{ID: 1, Price: dec("1000"), Payments: []models.Payment{{Amount: dec("400")}}},
		{ID: 2, Price: dec("250")},
	}, nil)
	repo.On("ActiveSubscriptions", ctx, (*int64)(nil)).Return([]models.Subscription{
		{ID: 3, Price: dec("100"), Active: true},
		{ID: 4, Price: dec("200"), Active: true},
	}, nil)
	loyalty.On("ResolveLoyaltyPercent", ctx, now).Return(dec("5"), nil)

	got, err := svc.Predicted(ctx, nil, now)
	require.NoError(t, err)
	// 1000 + 250 + 95 + 190
	assert.True(t, got.Equal(dec("1535")), "got %s", got)
}

func TestRevenueService_PredictedCountsFullPriceOfPartiallyPaidContract(t *testing.T) {
	ctx := context.Background()
	svc, repo, loyalty, _ := newService()

	repo.On("OpenContracts", ctx, (*int64)(nil), now).Return([]models.Contract{
		{ID: 1, Price: dec("1000"), Payments: []models.Payment{{Amount: dec("400")}}},
	}, nil)
	repo.On("ActiveSubscriptions", ctx, (*int64)(nil)).Return([]models.Subscription{}, nil)

	got, err := svc.Predicted(ctx, nil, now)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1000")), "got %s", got)
	loyalty.AssertNotCalled(t, "ResolveLoyaltyPercent", mock.Anything, mock.Anything)
}

func TestRevenueService_Convert(t *testing.T) {
	ctx := context.Background()

	t.Run("base currency is identity", func(t *testing.T) {
		svc, _, _, rates := newService()
		got, err := svc.Convert(ctx, dec("120"), "PLN")
		require.NoError(t, err)
		assert.True(t, got.Converted.Equal(dec("120")))
		assert.True(t, got.Rate.Equal(dec("1")))
		rates.AssertNotCalled(t, "Rate", mock.Anything, mock.Anything)
	})

	t.Run("divides by mid rate", func(t *testing.T) {
		svc, _, _, rates := newService()
		rates.On("Rate", ctx, "EUR").Return(dec("4.2"), nil)

		got, err := svc.Convert(ctx, dec("420"), "eur")
		require.NoError(t, err)
		assert.Equal(t, "EUR", got.Currency)
		assert.Equal(t, "PLN", got.Base)
		assert.True(t, got.Converted.Equal(dec("100")), "got %s", got.Converted)
	})

	t.Run("rate failure is an external error", func(t *testing.T) {
		svc, _, _, rates := newService()
		rates.On("Rate", ctx, "USD").Return(decimal.Zero, errors.New("timeout"))

		_, err := svc.Convert(ctx, dec("10"), "USD")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrConversionFailed)
		assert.Equal(t, apperr.KindExternal, apperr.KindOf(err))
	})
}
