package kernel

import "strings"

// Role es el rol operativo de un usuario dentro de su tenant
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleOperator Role = "OPERATOR"
	RoleUser     Role = "USER"
)

// ParseRole normaliza un rol recibido como texto. ok es false si el rol no existe.
func ParseRole(value string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(value)))
	return r, r.IsValid()
}

func (r Role) String() string { return string(r) }

// IsValid verifica si el rol es uno de los roles conocidos
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleOperator, RoleUser:
		return true
	default:
		return false
	}
}

// In verifica si el rol pertenece al conjunto dado
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
