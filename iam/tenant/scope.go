package tenant

import (
	"context"

	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Scope instala una celda de tenant vacía en el contexto del request y la limpia
// en toda salida, incluyendo rechazos y panics. Debe ser el primer middleware de
// la cadena de tenant; fiber reutiliza los Ctx entre requests.
func Scope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cell := kernel.WithTenantCell(c.UserContext())
		c.SetUserContext(ctx)

		defer func() {
			cell.Clear()
			c.Locals(kernel.AuthContextKey, nil)
			c.Locals("auth", nil)
			c.SetUserContext(context.Background())
		}()

		return c.Next()
	}
}
