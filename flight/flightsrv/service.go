package flightsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/skyport/flight"
	"github.com/Abraxas-365/skyport/iam/tenant"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/google/uuid"
)

// FlightService proporciona las operaciones CRUD de vuelos. El tenant nunca llega
// como parámetro: se lee del contexto del request y la operación falla si falta.
type FlightService struct {
	flightRepo flight.FlightRepository
	location   *time.Location
	now        func() time.Time
}

// ServiceOption personaliza el FlightService
type ServiceOption func(*FlightService)

// WithClock reemplaza el reloj del servicio
func WithClock(now func() time.Time) ServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

// NewFlightService crea una nueva instancia del servicio de vuelos. loc es la zona
// horaria en la que se interpretan las horas de los vuelos.
func NewFlightService(flightRepo flight.FlightRepository, loc *time.Location, opts ...ServiceOption) *FlightService {
	if loc == nil {
		loc = time.UTC
	}
	s := &FlightService{
		flightRepo: flightRepo,
		location:   loc,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListFlights lista los vuelos del tenant actual
func (s *FlightService) ListFlights(ctx context.Context) ([]*flight.Flight, error) {
	tenantID, err := tenant.Current(ctx)
	if err != nil {
		return nil, err
	}

	flights, err := s.flightRepo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// El repositorio ya filtra; una fila ajena nunca debe salir de aquí.
	owned := make([]*flight.Flight, 0, len(flights))
	for _, f := range flights {
		if f.BelongsTo(tenantID) {
			owned = append(owned, f)
		}
	}
	return owned, nil
}

// GetFlight obtiene un vuelo del tenant actual
func (s *FlightService) GetFlight(ctx context.Context, id kernel.FlightID) (*flight.Flight, error) {
	tenantID, err := tenant.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id, tenantID)
}

// CreateFlight programa un vuelo en el tenant actual y deriva su estado inicial
func (s *FlightService) CreateFlight(ctx context.Context, req flight.CreateFlightRequest) (*flight.Flight, error) {
	tenantID, err := tenant.Current(ctx)
	if err != nil {
		return nil, err
	}

	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	now := s.now()
	f := &flight.Flight{
		ID:            kernel.NewFlightID(uuid.NewString()),
		TenantID:      tenantID,
		FlightNumber:  req.FlightNumber,
		Airline:       req.Airline,
		Origin:        req.Origin,
		Destination:   req.Destination,
		FlightDate:    date,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Gate:          req.Gate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.Status = f.DeriveStatus(now, s.location)

	if err := s.save(ctx, *f); err != nil {
		return nil, err
	}
	return f, nil
}

// RescheduleFlight cambia fecha y horas de un vuelo y recalcula su estado
func (s *FlightService) RescheduleFlight(ctx context.Context, id kernel.FlightID, req flight.RescheduleFlightRequest) (*flight.Flight, error) {
	tenantID, err := tenant.Current(ctx)
	if err != nil {
		return nil, err
	}

	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	f, err := s.find(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	f.FlightDate = date
	f.DepartureTime = req.DepartureTime
	f.ArrivalTime = req.ArrivalTime
	if req.Gate != nil {
		f.Gate = req.Gate
	}
	f.Status = f.DeriveStatus(now, s.location)
	f.UpdatedAt = now

	if err := s.save(ctx, *f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFlight elimina un vuelo del tenant actual
func (s *FlightService) DeleteFlight(ctx context.Context, id kernel.FlightID) error {
	tenantID, err := tenant.Current(ctx)
	if err != nil {
		return err
	}
	return s.flightRepo.Delete(ctx, id, tenantID)
}

func (s *FlightService) find(ctx context.Context, id kernel.FlightID, tenantID kernel.TenantID) (*flight.Flight, error) {
	f, err := s.flightRepo.FindByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if !f.BelongsTo(tenantID) {
		return nil, flight.ErrFlightNotFound().WithDetail("flight_id", id.String())
	}
	return f, nil
}

// save rechaza escribir una fila cuyo tenant no es el del contexto
func (s *FlightService) save(ctx context.Context, f flight.Flight) error {
	if err := tenant.AssertTenantMatches(ctx, f.TenantID); err != nil {
		return err
	}
	return s.flightRepo.Save(ctx, f)
}
