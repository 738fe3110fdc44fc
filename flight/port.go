package flight

import (
	"context"
	"time"

	"github.com/Abraxas-365/skyport/pkg/kernel"
)

// FlightRepository es el contrato acotado a tenant que usan los servicios CRUD.
// Cada lectura filtra por tenantID y cada escritura lo estampa.
type FlightRepository interface {
	FindByTenant(ctx context.Context, tenantID kernel.TenantID) ([]*Flight, error)
	FindByID(ctx context.Context, id kernel.FlightID, tenantID kernel.TenantID) (*Flight, error)
	Save(ctx context.Context, f Flight) error
	Delete(ctx context.Context, id kernel.FlightID, tenantID kernel.TenantID) error
}

// FleetStatusRepository es el acceso a toda la flota, de todos los tenants.
// Solo lo usa el scheduler de estados.
type FleetStatusRepository interface {
	FindAll(ctx context.Context) ([]*Flight, error)
	UpdateStatus(ctx context.Context, id kernel.FlightID, tenantID kernel.TenantID, status Status, updatedAt time.Time) error
}
