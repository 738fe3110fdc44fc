package user

import (
	"context"

	"github.com/Abraxas-365/skyport/pkg/kernel"
)

// UserRepository define el contrato para la persistencia de usuarios.
// Todas las búsquedas están acotadas a un tenant: un usuario de otro tenant
// se reporta como no encontrado.
type UserRepository interface {
	FindByID(ctx context.Context, id kernel.UserID, tenantID kernel.TenantID) (*User, error)
	FindByUsername(ctx context.Context, username string, tenantID kernel.TenantID) (*User, error)
	Save(ctx context.Context, u User) error
}

// PasswordService define el contrato para el manejo de contraseñas
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) bool
}
