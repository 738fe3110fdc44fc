package flightapi

import (
	"github.com/Abraxas-365/skyport/flight"
	"github.com/Abraxas-365/skyport/flight/flightsrv"
	"github.com/Abraxas-365/skyport/iam/auth"
	"github.com/Abraxas-365/skyport/iam/tenant"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// Rutas del API de vuelos
const (
	PathFlights = "/api/flights"
	PathFlight  = "/api/flights/:id"
)

// FlightHandler expone el FlightService por HTTP
type FlightHandler struct {
	service    *flightsrv.FlightService
	headerName string
}

// NewFlightHandler crea un nuevo handler de vuelos
func NewFlightHandler(service *flightsrv.FlightService, headerName string) *FlightHandler {
	if headerName == "" {
		headerName = tenant.HeaderTenantID
	}
	return &FlightHandler{
		service:    service,
		headerName: headerName,
	}
}

// RegisterRoutes registra las rutas de vuelos a través del Authorizer
func (h *FlightHandler) RegisterRoutes(router fiber.Router, authorizer *auth.Authorizer) {
	authorizer.Handle(router, fiber.MethodGet, PathFlights, h.List)
	authorizer.Handle(router, fiber.MethodGet, PathFlight, h.Get)
	authorizer.Handle(router, fiber.MethodPost, PathFlights, h.assertTenant, h.Create)
	authorizer.Handle(router, fiber.MethodPut, PathFlight, h.assertTenant, h.Reschedule)
	authorizer.Handle(router, fiber.MethodDelete, PathFlight, h.assertTenant, h.Delete)
}

// assertTenant compara el header de tenant, si viene, con el tenant del contexto.
// Con un token de otro tenant el header deja de coincidir y la escritura se rechaza.
func (h *FlightHandler) assertTenant(c *fiber.Ctx) error {
	if supplied, ok := tenant.SuppliedTenant(c.Get(h.headerName)); ok {
		if err := tenant.AssertTenantMatches(c.UserContext(), supplied); err != nil {
			return err
		}
	}
	return c.Next()
}

// List lista los vuelos del tenant
func (h *FlightHandler) List(c *fiber.Ctx) error {
	flights, err := h.service.ListFlights(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"flights": flights,
		"total":   len(flights),
	})
}

// Get obtiene un vuelo
func (h *FlightHandler) Get(c *fiber.Ctx) error {
	f, err := h.service.GetFlight(c.UserContext(), kernel.NewFlightID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(f)
}

// Create programa un vuelo
func (h *FlightHandler) Create(c *fiber.Ctx) error {
	var req flight.CreateFlightRequest
	if err := c.BodyParser(&req); err != nil {
		return flight.ErrInvalidFlight().WithDetail("error", "invalid request body")
	}

	f, err := h.service.CreateFlight(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(f)
}

// Reschedule reprograma un vuelo
func (h *FlightHandler) Reschedule(c *fiber.Ctx) error {
	var req flight.RescheduleFlightRequest
	if err := c.BodyParser(&req); err != nil {
		return flight.ErrInvalidFlight().WithDetail("error", "invalid request body")
	}

	f, err := h.service.RescheduleFlight(c.UserContext(), kernel.NewFlightID(c.Params("id")), req)
	if err != nil {
		return err
	}
	return c.JSON(f)
}

// Delete elimina un vuelo
func (h *FlightHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteFlight(c.UserContext(), kernel.NewFlightID(c.Params("id"))); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
