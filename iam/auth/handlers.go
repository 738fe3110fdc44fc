package auth

import (
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/skyport/iam"
	"github.com/Abraxas-365/skyport/iam/tenant"
	"github.com/Abraxas-365/skyport/iam/user"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Rutas del módulo de autenticación
const (
	PathLogin  = "/api/auth/login"
	PathMe     = "/api/auth/me"
	PathLogout = "/api/auth/logout"
)

// Textos exactos de rechazo del login
const (
	MessageInvalidUser     = "Invalid username or tenant."
	MessageInvalidPassword = "Invalid password."
)

// AuthHandlers maneja las rutas de autenticación con Fiber
type AuthHandlers struct {
	tokenService    TokenService
	userRepo        user.UserRepository
	passwordService user.PasswordService
	denylist        TokenDenylist
	headerName      string
	now             func() time.Time
}

// NewAuthHandlers crea un nuevo handler de autenticación. denylist puede ser nil;
// en ese caso logout no revoca nada.
func NewAuthHandlers(
	tokenService TokenService,
	userRepo user.UserRepository,
	passwordService user.PasswordService,
	denylist TokenDenylist,
	headerName string,
) *AuthHandlers {
	if headerName == "" {
		headerName = tenant.HeaderTenantID
	}
	return &AuthHandlers{
		tokenService:    tokenService,
		userRepo:        userRepo,
		passwordService: passwordService,
		denylist:        denylist,
		headerName:      headerName,
		now:             time.Now,
	}
}

// RegisterRoutes registra las rutas de autenticación a través del Authorizer
func (ah *AuthHandlers) RegisterRoutes(router fiber.Router, authorizer *Authorizer) {
	authorizer.Handle(router, fiber.MethodPost, PathLogin, ah.Login)
	authorizer.Handle(router, fiber.MethodGet, PathMe, ah.Me)
	authorizer.Handle(router, fiber.MethodPost, PathLogout, ah.Logout)
}

// Login autentica usuario y contraseña dentro del tenant del header X-Tenant-ID
func (ah *AuthHandlers) Login(c *fiber.Ctx) error {
	tenantID, ok := tenant.SuppliedTenant(c.Get(ah.headerName))
	if !ok {
		return plainText(c, fiber.StatusBadRequest, tenant.MissingHeaderMessage)
	}

	if err := tenant.AssertTenantMatches(c.UserContext(), tenantID); err != nil {
		return plainText(c, fiber.StatusForbidden, tenant.MismatchMessage)
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	u, err := ah.userRepo.FindByUsername(c.UserContext(), req.Username, tenantID)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			return plainText(c, fiber.StatusUnauthorized, MessageInvalidUser)
		}
		return err
	}

	if !u.CanLogin() {
		return plainText(c, fiber.StatusUnauthorized, MessageInvalidUser)
	}

	if !ah.passwordService.VerifyPassword(u.PasswordHash, req.Password) {
		return plainText(c, fiber.StatusUnauthorized, MessageInvalidPassword)
	}

	token, err := ah.tokenService.Issue(u.Username, u.Role, u.TenantID, 0)
	if err != nil {
		return err
	}

	u.UpdateLastLogin(ah.now())
	if err := ah.userRepo.Save(c.UserContext(), *u); err != nil {
		logx.Error("Failed to record last login for user %s: %v", u.ID, err)
	}

	return c.JSON(LoginResponse{
		Token:    token,
		Role:     u.Role,
		TenantID: u.TenantID,
		UserID:   u.ID,
	})
}

// MeResponse describe al principal y cómo se resolvió su tenant
type MeResponse struct {
	User   *kernel.AuthContext     `json:"user"`
	Tenant kernel.TenantResolution `json:"tenant"`
}

// Me retorna el principal autenticado junto con la resolución de tenant
func (ah *AuthHandlers) Me(c *fiber.Ctx) error {
	authContext, ok := GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	resolution, _ := kernel.ResolutionFromContext(c.UserContext())

	return c.JSON(MeResponse{
		User:   authContext,
		Tenant: resolution,
	})
}

// Logout revoca el token presentado hasta su propia expiración
func (ah *AuthHandlers) Logout(c *fiber.Ctx) error {
	token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return iam.ErrUnauthorized()
	}

	claims, err := ah.tokenService.Claims(token)
	if err != nil {
		return iam.ErrInvalidToken()
	}

	if ah.denylist != nil {
		if err := ah.denylist.Revoke(c.UserContext(), token, claims.ExpiresAt); err != nil {
			return errx.Wrap(err, "failed to revoke token", errx.TypeInternal)
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func plainText(c *fiber.Ctx, status int, message string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(status).SendString(message)
}
