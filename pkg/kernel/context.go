package kernel

import "context"

// ============================================================================
// Context Types - Tipos para context.Context
// ============================================================================

// AuthContext es el principal autenticado que el gate adjunta a cada request
type AuthContext struct {
	UserID   UserID   `json:"user_id"`
	TenantID TenantID `json:"tenant_id"`
	Username string   `json:"username"`
	Role     Role     `json:"role"`
}

// IsValid verifica si el AuthContext es válido
func (a *AuthContext) IsValid() bool {
	return !a.UserID.IsEmpty() && !a.TenantID.IsEmpty() && a.Role.IsValid()
}

// HasRole verifica si el principal tiene alguno de los roles dados
func (a *AuthContext) HasRole(roles ...Role) bool {
	return a.Role.In(roles...)
}

// ============================================================================
// Context Keys - Claves para context.Context
// ============================================================================

type ContextKey string

const (
	// AuthContextKey es la clave para almacenar AuthContext en context.Context
	// y en fiber.Locals
	AuthContextKey ContextKey = "auth_context"

	// TenantCellKey es la clave de la celda de tenant del request
	TenantCellKey ContextKey = "tenant_cell"

	// RequestIDKey es la clave para almacenar el ID de la petición
	RequestIDKey ContextKey = "request_id"
)

// WithAuthContext adjunta el principal a ctx
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, AuthContextKey, ac)
}

// AuthFromContext retorna el principal si existe y es válido
func AuthFromContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(AuthContextKey).(*AuthContext)
	return ac, ok && ac != nil && ac.IsValid()
}
