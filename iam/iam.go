package iam

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

// ============================================================================
// Error Registry - Registro de errores del módulo IAM
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

// Códigos de error del módulo IAM
var (
	CodeUnauthorized       = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Authentication required")
	CodeInvalidToken       = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid or expired token")
	CodeAccessDenied       = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Access denied")
	CodeTenantScopeMissing = ErrRegistry.Register("TENANT_SCOPE_MISSING", errx.TypeInternal, http.StatusInternalServerError, "Request is not tenant scoped")
)

// Helper functions para crear errores comunes
func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

func ErrInvalidToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidToken)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}

// ErrTenantScopeMissing indica que la cadena de middleware no instaló la celda de tenant
func ErrTenantScopeMissing() *errx.Error {
	return ErrRegistry.New(CodeTenantScopeMissing)
}
