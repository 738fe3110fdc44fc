package auth

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/skyport/pkg/kernel"
)

// ============================================================================
// Token Types
// ============================================================================

// TokenClaims representa los claims verificados de un token de sesión
type TokenClaims struct {
	Subject   string          `json:"sub"`
	Role      kernel.Role     `json:"role"`
	TenantID  kernel.TenantID `json:"tenant_id"`
	IssuedAt  time.Time       `json:"iat"`
	ExpiresAt time.Time       `json:"exp"`
}

// IsExpiredAt verifica si los claims ya expiraron en el instante dado
func (c *TokenClaims) IsExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// LoginRequest cuerpo del endpoint de login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse respuesta del endpoint de login
type LoginResponse struct {
	Token    string          `json:"token"`
	Role     kernel.Role     `json:"role"`
	TenantID kernel.TenantID `json:"tenantId"`
	UserID   kernel.UserID   `json:"userId"`
}

// ============================================================================
// Error Registry - Errores específicos de Auth
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

// Códigos de error
var (
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate token")
	CodeTokenValidationFailed = ErrRegistry.Register("TOKEN_VALIDATION_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Failed to validate token")
	CodeTokenExpired          = ErrRegistry.Register("TOKEN_EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "Token expired")
	CodeTokenRevoked          = ErrRegistry.Register("TOKEN_REVOKED", errx.TypeAuthorization, http.StatusUnauthorized, "Token revoked")
)

// Helper functions para crear errores
func ErrTokenGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerationFailed)
}

func ErrTokenValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenValidationFailed)
}

func ErrTokenExpired() *errx.Error {
	return ErrRegistry.New(CodeTokenExpired)
}

func ErrTokenRevoked() *errx.Error {
	return ErrRegistry.New(CodeTokenRevoked)
}
