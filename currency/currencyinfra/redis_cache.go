package currencyinfra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/skyport/currency"
	"github.com/go-redis/redis/v8"
)

const (
	rateKeyPrefix   = "currency:rate:"
	DefaultCacheTTL = 10 * time.Minute
)

// CachedRateRepository envuelve otro RateRepository con un cache read-through
// en Redis. Si Redis falla se consulta directamente al repositorio envuelto.
type CachedRateRepository struct {
	next  currency.RateRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedRateRepository(next currency.RateRepository, client *redis.Client, ttl time.Duration) *CachedRateRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedRateRepository{
		next:  next,
		redis: client,
		ttl:   ttl,
	}
}

// FindByCode retorna la tasa desde cache o, si no está, desde el repositorio envuelto.
// Los códigos inexistentes no se cachean.
func (c *CachedRateRepository) FindByCode(ctx context.Context, code string) (*currency.Rate, error) {
	key := rateKeyPrefix + code

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rate currency.Rate
		if jsonErr := json.Unmarshal(data, &rate); jsonErr == nil {
			return &rate, nil
		}
		logx.Error("Discarding corrupt cached rate %s", code)
	case !errors.Is(err, redis.Nil):
		logx.Error("Currency cache unavailable, reading %s from store: %v", code, err)
	}

	rate, err := c.next.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(rate); err == nil {
		if err := c.redis.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			logx.Error("Failed to cache currency rate %s: %v", code, err)
		}
	}

	return rate, nil
}

// Invalidate elimina la tasa cacheada
func (c *CachedRateRepository) Invalidate(ctx context.Context, code string) error {
	return c.redis.Del(ctx, rateKeyPrefix+code).Err()
}
