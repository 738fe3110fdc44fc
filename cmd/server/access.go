package main

import (
	"github.com/Abraxas-365/skyport/currency/currencyapi"
	"github.com/Abraxas-365/skyport/flight/flightapi"
	"github.com/Abraxas-365/skyport/iam/auth"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

const PathHealth = "/health"

// accessTable declara cada ruta expuesta y los roles que la pueden usar.
// Una ruta que no aparece aquí no se puede registrar.
func accessTable() auth.AccessTable {
	flightWriters := auth.RequireRoles(kernel.RoleAdmin, kernel.RoleOperator)

	return auth.AccessTable{
		auth.RouteKey(fiber.MethodGet, PathHealth): auth.Public(),

		// Auth
		auth.RouteKey(fiber.MethodPost, auth.PathLogin):  auth.Public(),
		auth.RouteKey(fiber.MethodGet, auth.PathMe):      auth.Authenticated(),
		auth.RouteKey(fiber.MethodPost, auth.PathLogout): auth.Authenticated(),

		// Flights
		auth.RouteKey(fiber.MethodGet, flightapi.PathFlights):   auth.Authenticated(),
		auth.RouteKey(fiber.MethodGet, flightapi.PathFlight):    auth.Authenticated(),
		auth.RouteKey(fiber.MethodPost, flightapi.PathFlights):  flightWriters,
		auth.RouteKey(fiber.MethodPut, flightapi.PathFlight):    flightWriters,
		auth.RouteKey(fiber.MethodDelete, flightapi.PathFlight): auth.RequireRoles(kernel.RoleAdmin),

		// Currency
		auth.RouteKey(fiber.MethodGet, currencyapi.PathRate): auth.Authenticated(),
	}
}
