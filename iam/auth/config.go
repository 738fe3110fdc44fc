package auth

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/craftable/errx"
)

// MinSecretLength es la longitud mínima del secreto HMAC (256 bits)
const MinSecretLength = 32

// Config configuración completa del módulo de autenticación
type Config struct {
	JWT JWTConfig `json:"jwt" yaml:"jwt"`
}

// JWTConfig configuración para JWT
type JWTConfig struct {
	SecretKey      string        `json:"secret_key" yaml:"secret_key"`
	AccessTokenTTL time.Duration `json:"access_token_ttl" yaml:"access_token_ttl"`
	Issuer         string        `json:"issuer" yaml:"issuer"`
}

// DefaultConfig retorna configuración por defecto (sin secreto)
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTokenTTL: 10 * time.Hour,
			Issuer:         "skyport",
		},
	}
}

// Validate valida la configuración. Un error aquí es fatal: el proceso no debe arrancar.
func (c *Config) Validate() error {
	return c.JWT.Validate()
}

// Validate valida el secreto y el TTL de los tokens
func (c *JWTConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingJWTSecret()
	}

	if len(c.SecretKey) < MinSecretLength {
		return ErrWeakJWTSecret().WithDetail("min_length", MinSecretLength)
	}

	if c.AccessTokenTTL <= 0 {
		return ErrInvalidTokenTTL().WithDetail("token_type", "access")
	}

	return nil
}

// Config error codes
var (
	CodeMissingJWTSecret = ErrRegistry.Register("MISSING_JWT_SECRET", errx.TypeValidation, http.StatusInternalServerError, "JWT secret key is required")
	CodeWeakJWTSecret    = ErrRegistry.Register("WEAK_JWT_SECRET", errx.TypeValidation, http.StatusInternalServerError, "JWT secret key must be at least 32 bytes")
	CodeInvalidTokenTTL  = ErrRegistry.Register("INVALID_TOKEN_TTL", errx.TypeValidation, http.StatusInternalServerError, "Invalid token TTL")
)

// Helper functions para crear errores de configuración
func ErrMissingJWTSecret() *errx.Error {
	return ErrRegistry.New(CodeMissingJWTSecret)
}

func ErrWeakJWTSecret() *errx.Error {
	return ErrRegistry.New(CodeWeakJWTSecret)
}

func ErrInvalidTokenTTL() *errx.Error {
	return ErrRegistry.New(CodeInvalidTokenTTL)
}
