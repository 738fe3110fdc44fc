package auth

import (
	"fmt"
	"time"

	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

var _ TokenService = (*JWTService)(nil)

// JWTService implementación del TokenService usando JWT HS256.
// La clave se carga una vez al arrancar y solo se lee después.
type JWTService struct {
	secretKey  []byte
	defaultTTL time.Duration
	issuer     string
	now        func() time.Time
	parser     *jwt.Parser
}

// JWTOption personaliza el JWTService
type JWTOption func(*JWTService)

// WithClock reemplaza el reloj usado para emitir y validar tokens
func WithClock(now func() time.Time) JWTOption {
	return func(j *JWTService) {
		j.now = now
	}
}

// NewJWTService crea el servicio a partir de la configuración. Falla si el secreto
// falta o es menor a 256 bits; el llamador debe tratar ese error como fatal.
func NewJWTService(cfg JWTConfig, opts ...JWTOption) (*JWTService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "skyport"
	}

	j := &JWTService{
		secretKey:  []byte(cfg.SecretKey),
		defaultTTL: cfg.AccessTokenTTL,
		issuer:     issuer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	j.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(j.now),
	)

	return j, nil
}

// JWTClaims claims firmados. exp_ms es la expiración autoritativa en milisegundos
// epoch; exp se redondea hacia arriba al segundo para validadores estándar.
type JWTClaims struct {
	Role        kernel.Role     `json:"role"`
	TenantID    kernel.TenantID `json:"tenant_id"`
	IssuedAtMs  int64           `json:"iat_ms"`
	ExpiresAtMs int64           `json:"exp_ms"`
	jwt.RegisteredClaims
}

// Issue emite un token firmado sobre {sub, role, tenant_id, iat, exp}. No lleva
// nonce: mismas entradas en el mismo instante producen el mismo token.
func (j *JWTService) Issue(subject string, role kernel.Role, tenantID kernel.TenantID, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrTokenGenerationFailed().WithDetail("error", "subject is required")
	}
	if tenantID.IsEmpty() {
		return "", ErrTokenGenerationFailed().WithDetail("error", "tenant is required")
	}
	if !role.IsValid() {
		return "", ErrTokenGenerationFailed().WithDetail("role", role.String())
	}
	if ttl <= 0 {
		ttl = j.defaultTTL
	}

	issuedAt := j.now().Truncate(time.Millisecond)
	expiresAt := issuedAt.Add(ttl)

	claims := JWTClaims{
		Role:        role,
		TenantID:    tenantID,
		IssuedAtMs:  issuedAt.UnixMilli(),
		ExpiresAtMs: expiresAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(expiresAt)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}

	return tokenString, nil
}

// Validate verifica firma, emisor y expiración. Nunca falla ni produce efectos.
func (j *JWTService) Validate(tokenString string) bool {
	_, err := j.parse(tokenString)
	return err == nil
}

// Claims retorna los claims de un token válido
func (j *JWTService) Claims(tokenString string) (*TokenClaims, error) {
	jwtClaims, err := j.parse(tokenString)
	if err != nil {
		return nil, err
	}

	return &TokenClaims{
		Subject:   jwtClaims.Subject,
		Role:      jwtClaims.Role,
		TenantID:  jwtClaims.TenantID,
		IssuedAt:  time.UnixMilli(jwtClaims.IssuedAtMs),
		ExpiresAt: time.UnixMilli(jwtClaims.ExpiresAtMs),
	}, nil
}

func (j *JWTService) parse(tokenString string) (claims *JWTClaims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, ErrTokenValidationFailed().WithDetail("error", "malformed token")
		}
	}()

	if tokenString == "" {
		return nil, ErrTokenValidationFailed().WithDetail("error", "empty token")
	}

	token, err := j.parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, ErrTokenValidationFailed().WithDetail("error", err.Error())
	}

	if !token.Valid {
		return nil, ErrTokenValidationFailed().WithDetail("error", "token is invalid")
	}

	jwtClaims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, ErrTokenValidationFailed().WithDetail("error", "invalid claims type")
	}

	if jwtClaims.Subject == "" || jwtClaims.TenantID.IsEmpty() || !jwtClaims.Role.IsValid() {
		return nil, ErrTokenValidationFailed().WithDetail("error", "incomplete claims")
	}

	if j.now().UnixMilli() >= jwtClaims.ExpiresAtMs {
		return nil, ErrTokenExpired()
	}

	return jwtClaims, nil
}

func ceilSecond(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Second)
}
