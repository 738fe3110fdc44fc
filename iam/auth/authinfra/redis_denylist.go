package authinfra

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/skyport/iam/auth"
	"github.com/go-redis/redis/v8"
)

const denylistKeyPrefix = "auth:revoked:"

var _ auth.TokenDenylist = (*RedisTokenDenylist)(nil)

// RedisTokenDenylist guarda tokens revocados hasta su expiración. La clave es el
// SHA-256 del token; el token en sí nunca se almacena.
type RedisTokenDenylist struct {
	redis *redis.Client
	now   func() time.Time
}

// NewRedisTokenDenylist crea el denylist sobre un cliente de Redis
func NewRedisTokenDenylist(client *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{
		redis: client,
		now:   time.Now,
	}
}

// Revoke marca el token como revocado hasta until. Un token ya expirado no se guarda.
func (d *RedisTokenDenylist) Revoke(ctx context.Context, token string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}

	if err := d.redis.Set(ctx, denylistKey(token), "1", ttl).Err(); err != nil {
		return errx.Wrap(err, "failed to revoke token", errx.TypeExternal)
	}
	return nil
}

// IsRevoked verifica si el token fue revocado
func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := d.redis.Exists(ctx, denylistKey(token)).Result()
	if err != nil {
		return false, errx.Wrap(err, "failed to check token denylist", errx.TypeExternal)
	}
	return n > 0, nil
}

func denylistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return denylistKeyPrefix + hex.EncodeToString(sum[:])
}
