package auth

import (
	"context"
	"strings"

	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/skyport/iam"
	"github.com/Abraxas-365/skyport/iam/user"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// LocalsAuthKey es la clave de fiber.Locals donde el gate deja el principal
const LocalsAuthKey = "auth"

// AuthMiddleware es el gate de autenticación. Corre después del TenantResolver.
type AuthMiddleware struct {
	tokenService TokenService
	userRepo     user.UserRepository
	denylist     TokenDenylist
}

// NewAuthMiddleware crea un nuevo middleware de autenticación. denylist puede ser nil.
func NewAuthMiddleware(tokenService TokenService, userRepo user.UserRepository, denylist TokenDenylist) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		userRepo:     userRepo,
		denylist:     denylist,
	}
}

// Authenticate valida el bearer token si viene. Nunca rechaza: un token ausente,
// inválido o revocado deja el request sin autenticar y la tabla de acceso decide.
// Con un token válido el tenant del token reemplaza al derivado del host.
func (am *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		cell := kernel.TenantCellFrom(ctx)
		if cell == nil {
			return iam.ErrTenantScopeMissing()
		}

		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok || !am.tokenService.Validate(token) {
			return c.Next()
		}

		claims, err := am.tokenService.Claims(token)
		if err != nil {
			return c.Next()
		}

		if am.isRevoked(ctx, token) {
			return c.Next()
		}

		// El tenant firmado gana aunque el usuario ya no exista.
		cell.Set(claims.TenantID, kernel.TenantSourceToken)

		u, err := am.userRepo.FindByUsername(ctx, claims.Subject, claims.TenantID)
		if err != nil {
			logx.Info("Authenticated token without user: tenant=%s err=%v", claims.TenantID, err)
			return c.Next()
		}
		if !u.CanLogin() || !u.BelongsTo(claims.TenantID) {
			return c.Next()
		}

		principal := u.Principal()
		c.Locals(LocalsAuthKey, principal)
		c.SetUserContext(kernel.WithAuthContext(ctx, principal))

		return c.Next()
	}
}

func (am *AuthMiddleware) isRevoked(ctx context.Context, token string) bool {
	if am.denylist == nil {
		return false
	}
	revoked, err := am.denylist.IsRevoked(ctx, token)
	if err != nil {
		logx.Error("Token denylist unavailable, treating token as revoked: %v", err)
		return true
	}
	return revoked
}

// BearerToken extrae el token de un header "Bearer <token>"
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetAuthContext helper para extraer el contexto de autenticación de Fiber
func GetAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	authContext, ok := c.Locals(LocalsAuthKey).(*kernel.AuthContext)
	return authContext, ok && authContext != nil && authContext.IsValid()
}
