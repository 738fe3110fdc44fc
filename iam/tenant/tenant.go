package tenant

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/skyport/pkg/kernel"
)

const (
	// DefaultTenant se usa cuando el host no tiene subdominio
	DefaultTenant kernel.TenantID = "default"

	// HeaderTenantID es el header de consistencia que pueden enviar los clientes
	HeaderTenantID = "X-Tenant-ID"

	// MismatchMessage es el cuerpo exacto de la respuesta 403 por mismatch
	MismatchMessage = "Tenant ID mismatch with host"

	// MissingHeaderMessage es el cuerpo de la respuesta 400 cuando el header es obligatorio
	MissingHeaderMessage = "X-Tenant-ID header is required"
)

// ============================================================================
// Error Registry - Errores específicos de Tenant
// ============================================================================

var ErrRegistry = errx.NewRegistry("TENANT")

// Códigos de error
var (
	CodeTenantMismatch       = ErrRegistry.Register("MISMATCH", errx.TypeAuthorization, http.StatusForbidden, MismatchMessage)
	CodeTenantContextMissing = ErrRegistry.Register("CONTEXT_MISSING", errx.TypeAuthorization, http.StatusForbidden, "No tenant in request context")
	CodeMissingTenantHeader  = ErrRegistry.Register("MISSING_HEADER", errx.TypeValidation, http.StatusBadRequest, MissingHeaderMessage)
)

// Helper functions para crear errores
func ErrTenantMismatch() *errx.Error {
	return ErrRegistry.New(CodeTenantMismatch)
}

func ErrTenantContextMissing() *errx.Error {
	return ErrRegistry.New(CodeTenantContextMissing)
}

func ErrMissingTenantHeader() *errx.Error {
	return ErrRegistry.New(CodeMissingTenantHeader)
}
