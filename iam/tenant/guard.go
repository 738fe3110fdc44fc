package tenant

import (
	"context"
	"strings"

	"github.com/Abraxas-365/skyport/pkg/kernel"
)

// AssertTenantMatches falla con un error 403 si no hay tenant ambiental o si el
// tenant suministrado no es igual al ambiental.
func AssertTenantMatches(ctx context.Context, supplied kernel.TenantID) error {
	current, ok := kernel.TenantFromContext(ctx)
	if !ok {
		return ErrTenantContextMissing()
	}
	if current != supplied {
		return ErrTenantMismatch().WithDetail("supplied", supplied.String())
	}
	return nil
}

// Current retorna el tenant ambiental o un error 403 si falta
func Current(ctx context.Context) (kernel.TenantID, error) {
	current, ok := kernel.TenantFromContext(ctx)
	if !ok {
		return "", ErrTenantContextMissing()
	}
	return current, nil
}

// SuppliedTenant normaliza el valor de un header de tenant. ok es false si está vacío.
func SuppliedTenant(value string) (kernel.TenantID, bool) {
	value = strings.TrimSpace(value)
	return kernel.TenantID(value), value != ""
}
