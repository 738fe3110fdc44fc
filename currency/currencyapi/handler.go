package currencyapi

import (
	"github.com/Abraxas-365/skyport/currency"
	"github.com/Abraxas-365/skyport/iam/auth"
	"github.com/gofiber/fiber/v2"
)

const PathRate = "/api/currency-rates/:code"

// RateHandler expone la consulta de tasas de cambio
type RateHandler struct {
	rates currency.RateRepository
}

func NewRateHandler(rates currency.RateRepository) *RateHandler {
	return &RateHandler{rates: rates}
}

// RegisterRoutes registra las rutas a través del Authorizer
func (h *RateHandler) RegisterRoutes(router fiber.Router, authorizer *auth.Authorizer) {
	authorizer.Handle(router, fiber.MethodGet, PathRate, h.Get)
}

// Get retorna la tasa del código pedido
func (h *RateHandler) Get(c *fiber.Ctx) error {
	code, err := currency.NormalizeCode(c.Params("code"))
	if err != nil {
		return err
	}

	rate, err := h.rates.FindByCode(c.UserContext(), code)
	if err != nil {
		return err
	}

	return c.JSON(rate)
}
