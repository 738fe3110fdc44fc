package tenant

import (
	"net"
	"strings"

	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/skyport/iam"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// ResolveHost deriva el tenant del host del request. Un host con más de dos
// etiquetas usa la primera como tenant (tenant1.example.com -> tenant1); cualquier
// otro host, o una IP, resuelve al tenant por defecto. El puerto se ignora.
func ResolveHost(host string, defaultTenant kernel.TenantID) kernel.TenantResolution {
	fallback := kernel.TenantResolution{Tenant: defaultTenant, Source: kernel.TenantSourceDefault}

	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")

	if host == "" || net.ParseIP(host) != nil {
		return fallback
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 || labels[0] == "" {
		return fallback
	}

	return kernel.TenantResolution{Tenant: kernel.TenantID(labels[0]), Source: kernel.TenantSourceHost}
}

// Resolver es el primer paso de la cadena: deriva el tenant del host, lo compara
// con el header si viene, y lo escribe en la celda del request.
type Resolver struct {
	defaultTenant kernel.TenantID
	headerName    string
}

// NewResolver crea un Resolver. Valores vacíos usan DefaultTenant y HeaderTenantID.
func NewResolver(defaultTenant kernel.TenantID, headerName string) *Resolver {
	if defaultTenant.IsEmpty() {
		defaultTenant = DefaultTenant
	}
	if headerName == "" {
		headerName = HeaderTenantID
	}
	return &Resolver{
		defaultTenant: defaultTenant,
		headerName:    headerName,
	}
}

// HeaderName retorna el header de tenant configurado
func (r *Resolver) HeaderName() string {
	return r.headerName
}

// Resolve deriva el tenant de un host
func (r *Resolver) Resolve(host string) kernel.TenantResolution {
	return ResolveHost(host, r.defaultTenant)
}

// Middleware retorna el handler de fiber. Si el header de tenant viene y no
// coincide con el tenant resuelto, responde 403 en texto plano y corta la cadena.
func (r *Resolver) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cell := kernel.TenantCellFrom(c.UserContext())
		if cell == nil {
			return iam.ErrTenantScopeMissing()
		}

		// Host del request tal cual llegó; X-Forwarded-Host lo controla el cliente
		resolution := r.Resolve(string(c.Request().Host()))

		if supplied, ok := SuppliedTenant(c.Get(r.headerName)); ok && supplied != resolution.Tenant {
			logx.Info("Tenant header mismatch: host=%s header=%s path=%s", resolution.Tenant, supplied, c.Path())
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Status(fiber.StatusForbidden).SendString(MismatchMessage)
		}

		cell.Set(resolution.Tenant, resolution.Source)
		return c.Next()
	}
}
