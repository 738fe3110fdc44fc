package authinfra

import (
	"github.com/Abraxas-365/skyport/iam/user"
	"golang.org/x/crypto/bcrypt"
)

// BcryptPasswordService implementación del servicio de contraseñas usando bcrypt
type BcryptPasswordService struct {
	cost int
}

// NewBcryptPasswordService crea el servicio con el costo por defecto de bcrypt
func NewBcryptPasswordService() user.PasswordService {
	return NewBcryptPasswordServiceWithCost(bcrypt.DefaultCost)
}

// NewBcryptPasswordServiceWithCost crea el servicio con un costo explícito.
// Costos fuera de rango usan el costo por defecto.
func NewBcryptPasswordServiceWithCost(cost int) user.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordService{
		cost: cost,
	}
}

// HashPassword hashea una contraseña
func (s *BcryptPasswordService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword verifica una contraseña contra su hash. Un hash vacío nunca coincide.
func (s *BcryptPasswordService) VerifyPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
