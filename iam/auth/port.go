package auth

import (
	"context"
	"time"

	"github.com/Abraxas-365/skyport/pkg/kernel"
)

// TokenService define el contrato para emitir y verificar tokens de sesión.
// Es una función pura de la clave: no consulta almacenamiento.
type TokenService interface {
	Issue(subject string, role kernel.Role, tenantID kernel.TenantID, ttl time.Duration) (string, error)
	// Validate nunca falla: retorna false para tokens malformados, expirados o mal firmados
	Validate(token string) bool
	// Claims solo debe llamarse después de Validate; retorna error para tokens inválidos
	Claims(token string) (*TokenClaims, error)
}

// TokenDenylist define el contrato para revocar tokens antes de su expiración
type TokenDenylist interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
