package currencyinfra

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/skyport/currency"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresFindByCode(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	repo := NewPostgresRateRepository(sqlx.NewDb(raw, "postgres"))
	updated := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM currency_rates")).
		WithArgs("PEN").
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "rate", "updated_at"}).
			AddRow("PEN", "Sol", 3.75, updated))

	rate, err := repo.FindByCode(context.Background(), "PEN")
	require.NoError(t, err)
	assert.Equal(t, "Sol", rate.Name)
	assert.Equal(t, 3.75, rate.Rate)

	mock.ExpectQuery(regexp.QuoteMeta("FROM currency_rates")).
		WithArgs("XXX").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByCode(context.Background(), "XXX")
	assert.True(t, errx.IsType(err, errx.TypeNotFound))

	mock.ExpectQuery(regexp.QuoteMeta("FROM currency_rates")).
		WithArgs("EUR").
		WillReturnError(errors.New("connection reset"))
	_, err = repo.FindByCode(context.Background(), "EUR")
	assert.True(t, errx.IsType(err, errx.TypeInternal))

	assert.NoError(t, mock.ExpectationsWereMet())
}

type countingRepo struct {
	mu    sync.Mutex
	rates map[string]currency.Rate
	calls int
}

func (r *countingRepo) FindByCode(ctx context.Context, code string) (*currency.Rate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	rate, ok := r.rates[code]
	if !ok {
		return nil, currency.ErrRateNotFound()
	}
	return &rate, nil
}

func newCache(t *testing.T) (*CachedRateRepository, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backing := &countingRepo{rates: map[string]currency.Rate{
		"PEN": {Code: "PEN", Name: "Sol", Rate: 3.75, UpdatedAt: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
	}}
	return NewCachedRateRepository(backing, client, time.Minute), backing, mr
}

func TestCachedRateRepository_ReadThrough(t *testing.T) {
	cache, backing, mr := newCache(t)
	ctx := context.Background()

	first, err := cache.FindByCode(ctx, "PEN")
	require.NoError(t, err)
	second, err := cache.FindByCode(ctx, "PEN")
	require.NoError(t, err)

	assert.Equal(t, 1, backing.calls)
	assert.Equal(t, first.Rate, second.Rate)
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))
	assert.True(t, mr.Exists(rateKeyPrefix+"PEN"))

	mr.FastForward(2 * time.Minute)
	_, err = cache.FindByCode(ctx, "PEN")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.calls)
}

func TestCachedRateRepository_NotFoundIsNotCached(t *testing.T) {
	cache, backing, mr := newCache(t)

	_, err := cache.FindByCode(context.Background(), "XXX")
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
	_, _ = cache.FindByCode(context.Background(), "XXX")

	assert.Equal(t, 2, backing.calls)
	assert.False(t, mr.Exists(rateKeyPrefix+"XXX"))
}

func TestCachedRateRepository_CorruptEntryIsReplaced(t *testing.T) {
	cache, backing, mr := newCache(t)
	require.NoError(t, mr.Set(rateKeyPrefix+"PEN", "{not json"))

	rate, err := cache.FindByCode(context.Background(), "PEN")
	require.NoError(t, err)
	assert.Equal(t, 3.75, rate.Rate)
	assert.Equal(t, 1, backing.calls)
}

func TestCachedRateRepository_RedisDown(t *testing.T) {
	cache, backing, mr := newCache(t)
	mr.Close()

	rate, err := cache.FindByCode(context.Background(), "PEN")
	require.NoError(t, err)
	assert.Equal(t, "PEN", rate.Code)
	assert.Equal(t, 1, backing.calls)
}

func TestCachedRateRepository_Invalidate(t *testing.T) {
	cache, backing, _ := newCache(t)
	ctx := context.Background()

	_, _ = cache.FindByCode(ctx, "PEN")
	require.NoError(t, cache.Invalidate(ctx, "PEN"))
	_, _ = cache.FindByCode(ctx, "PEN")

	assert.Equal(t, 2, backing.calls)
}
