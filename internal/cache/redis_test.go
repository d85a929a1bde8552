package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/software-billing/internal/config"
	"github.com/magabrotheeeer/software-billing/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet_Discounts(t *testing.T) {
	cache, _ := setupTestCache(t)

	product := int64(3)
	expected := []models.Discount{{
		ID:         1,
		Name:       "spring",
		Category:   models.DiscountUpfront,
		ProductID:  &product,
		Percentage: decimal.RequireFromString("12.5"),
		StartDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, cache.Set("discounts:upfront", expected, time.Minute))

	var actual []models.Discount
	found, err := cache.Get("discounts:upfront", &actual)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, actual, 1)
	assert.Equal(t, expected[0].ID, actual[0].ID)
	assert.True(t, expected[0].Percentage.Equal(actual[0].Percentage))
	assert.Equal(t, *expected[0].ProductID, *actual[0].ProductID)
	assert.True(t, expected[0].StartDate.Equal(actual[0].StartDate))
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out []models.Discount
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSet_Expires(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Set("key", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	var out string
	found, err := cache.Get("key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)

	require.NoError(t, cache.Set("key", "value", time.Minute))
	require.NoError(t, cache.Invalidate("key"))

	var out string
	found, err := cache.Get("key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)

	err := cache.Db.Set(context.Background(), "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out []models.Discount
	found, err := cache.Get("bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c Noop
	require.NoError(t, c.Set("k", 1, time.Minute))
	found, err := c.Get("k", new(int))
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Invalidate("k"))
}
