package auth

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Abraxas-365/skyport/iam"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// AccessRule declara quién puede llamar una ruta. Una regla no pública sin roles
// admite a cualquier principal autenticado.
type AccessRule struct {
	Public bool
	Roles  []kernel.Role
}

// Public declara una ruta sin autenticación
func Public() AccessRule {
	return AccessRule{Public: true}
}

// Authenticated declara una ruta para cualquier principal autenticado
func Authenticated() AccessRule {
	return AccessRule{}
}

// RequireRoles declara una ruta restringida a los roles dados
func RequireRoles(roles ...kernel.Role) AccessRule {
	return AccessRule{Roles: roles}
}

// Allows verifica si el principal cumple la regla
func (r AccessRule) Allows(ac *kernel.AuthContext) bool {
	if r.Public {
		return true
	}
	if ac == nil || !ac.IsValid() {
		return false
	}
	return len(r.Roles) == 0 || ac.HasRole(r.Roles...)
}

// AccessTable es la tabla estática de acceso, indexada por RouteKey
type AccessTable map[string]AccessRule

// RouteKey construye la clave "METHOD /path" usada en la tabla
func RouteKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Authorizer registra rutas solo si la tabla las declara y aplica su regla
// antes del handler.
type Authorizer struct {
	table AccessTable

	mu         sync.Mutex
	registered map[string]bool
}

// NewAuthorizer crea un Authorizer sobre la tabla dada
func NewAuthorizer(table AccessTable) *Authorizer {
	return &Authorizer{
		table:      table,
		registered: make(map[string]bool, len(table)),
	}
}

// Rule retorna la regla declarada para una ruta
func (a *Authorizer) Rule(method, path string) (AccessRule, bool) {
	rule, ok := a.table[RouteKey(method, path)]
	return rule, ok
}

// Handle registra la ruta en router. path debe ser la ruta completa tal como
// aparece en la tabla. Entra en pánico si la ruta no está declarada.
func (a *Authorizer) Handle(router fiber.Router, method, path string, handlers ...fiber.Handler) fiber.Router {
	rule, ok := a.Rule(method, path)
	if !ok {
		panic(fmt.Sprintf("route %s is not declared in the access table", RouteKey(method, path)))
	}

	a.mu.Lock()
	a.registered[RouteKey(method, path)] = true
	a.mu.Unlock()

	chain := append([]fiber.Handler{a.Require(rule)}, handlers...)
	return router.Add(strings.ToUpper(method), path, chain...)
}

// Require retorna el middleware que aplica una regla. El rechazo es un error
// errx (401 o 403) que resuelve el ErrorHandler de la app.
func (a *Authorizer) Require(rule AccessRule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authContext, ok := GetAuthContext(c)
		if !ok {
			authContext = nil
		}
		if err := Check(authContext, rule); err != nil {
			return err
		}
		return c.Next()
	}
}

// Check retorna 401 si la regla exige autenticación y no hay principal, o 403
// si el rol del principal no está admitido.
func Check(ac *kernel.AuthContext, rule AccessRule) error {
	if rule.Allows(ac) {
		return nil
	}
	if ac == nil || !ac.IsValid() {
		return iam.ErrUnauthorized()
	}
	return iam.ErrAccessDenied().WithDetail("role", ac.Role.String())
}

// Unregistered lista las rutas declaradas que nadie registró
func (a *Authorizer) Unregistered() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var missing []string
	for key := range a.table {
		if !a.registered[key] {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
