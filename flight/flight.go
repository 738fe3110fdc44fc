package flight

import (
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/skyport/pkg/kernel"
)

// ============================================================================
// Flight Status
// ============================================================================

// Status es el estado operativo de un vuelo
type Status string

const (
	StatusScheduled      Status = "SCHEDULED"
	StatusBoarding       Status = "BOARDING"
	StatusInAir          Status = "IN_AIR"
	StatusLanded         Status = "LANDED"
	StatusDelayed        Status = "DELAYED"
	StatusCancelled      Status = "CANCELLED"
	StatusDiverted       Status = "DIVERTED"
	StatusReturnedToGate Status = "RETURNED_TO_GATE"
	StatusUnknown        Status = "UNKNOWN"
)

// BoardingWindow es cuánto antes de la salida empieza el embarque
const BoardingWindow = 60 * time.Minute

func (s Status) String() string { return string(s) }

// IsValid verifica si el estado es uno de los conocidos
func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusBoarding, StatusInAir, StatusLanded,
		StatusDelayed, StatusCancelled, StatusDiverted, StatusReturnedToGate, StatusUnknown:
		return true
	default:
		return false
	}
}

// DeriveStatus calcula el estado a partir de la hora actual y la ventana del vuelo.
//
//	now < departure-60m            SCHEDULED
//	departure-60m <= now < dep     BOARDING
//	departure <= now < arrival     IN_AIR
//	now >= arrival                 LANDED
//
// Una ventana incompleta o invertida produce UNKNOWN.
func DeriveStatus(now, departure, arrival time.Time) Status {
	if departure.IsZero() || arrival.IsZero() || arrival.Before(departure) {
		return StatusUnknown
	}

	switch {
	case now.Before(departure.Add(-BoardingWindow)):
		return StatusScheduled
	case now.Before(departure):
		return StatusBoarding
	case now.Before(arrival):
		return StatusInAir
	default:
		return StatusLanded
	}
}

// ============================================================================
// Flight Entity
// ============================================================================

// Flight es un vuelo operado en el aeropuerto de un tenant
type Flight struct {
	ID            kernel.FlightID `db:"id" json:"id"`
	TenantID      kernel.TenantID `db:"tenant_id" json:"tenant_id"`
	FlightNumber  string          `db:"flight_number" json:"flight_number"`
	Airline       string          `db:"airline" json:"airline"`
	Origin        string          `db:"origin" json:"origin"`
	Destination   string          `db:"destination" json:"destination"`
	FlightDate    time.Time       `db:"flight_date" json:"flight_date"`
	DepartureTime TimeOfDay       `db:"departure_time" json:"departure_time"`
	ArrivalTime   TimeOfDay       `db:"arrival_time" json:"arrival_time"`
	Gate          *string         `db:"gate" json:"gate,omitempty"`
	Status        Status          `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Window retorna la salida y llegada absolutas en loc. Si la llegada cae antes
// de la salida el vuelo cruza la medianoche y la llegada se mueve 24h.
func (f *Flight) Window(loc *time.Location) (departure, arrival time.Time) {
	if f.FlightDate.IsZero() {
		return time.Time{}, time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}

	departure = f.DepartureTime.On(f.FlightDate, loc)
	arrival = f.ArrivalTime.On(f.FlightDate, loc)
	if arrival.Before(departure) {
		arrival = arrival.Add(24 * time.Hour)
	}
	return departure, arrival
}

// DeriveStatus calcula el estado del vuelo en el instante now
func (f *Flight) DeriveStatus(now time.Time, loc *time.Location) Status {
	departure, arrival := f.Window(loc)
	return DeriveStatus(now, departure, arrival)
}

// Refresh recalcula el estado. Retorna true si cambió.
func (f *Flight) Refresh(now time.Time, loc *time.Location) bool {
	next := f.DeriveStatus(now, loc)
	if next == f.Status {
		return false
	}
	f.Status = next
	f.UpdatedAt = now
	return true
}

// BelongsTo verifica si el vuelo pertenece al tenant
func (f *Flight) BelongsTo(tenantID kernel.TenantID) bool {
	return !tenantID.IsEmpty() && f.TenantID == tenantID
}

// ============================================================================
// DTOs
// ============================================================================

// CreateFlightRequest cuerpo para programar un vuelo
type CreateFlightRequest struct {
	FlightNumber  string    `json:"flight_number"`
	Airline       string    `json:"airline"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	FlightDate    string    `json:"flight_date"`
	DepartureTime TimeOfDay `json:"departure_time"`
	ArrivalTime   TimeOfDay `json:"arrival_time"`
	Gate          *string   `json:"gate,omitempty"`
}

// Validate valida y normaliza la petición
func (r *CreateFlightRequest) Validate() (time.Time, error) {
	r.FlightNumber = strings.ToUpper(strings.TrimSpace(r.FlightNumber))
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))

	if r.FlightNumber == "" {
		return time.Time{}, ErrInvalidFlight().WithDetail("field", "flight_number")
	}
	if r.Origin == "" || r.Destination == "" {
		return time.Time{}, ErrInvalidFlight().WithDetail("field", "origin/destination")
	}
	if r.Origin == r.Destination {
		return time.Time{}, ErrInvalidFlight().WithDetail("error", "origin and destination must differ")
	}
	if r.DepartureTime == r.ArrivalTime {
		return time.Time{}, ErrInvalidFlight().WithDetail("error", "departure and arrival times must differ")
	}
	return ParseDate(r.FlightDate)
}

// RescheduleFlightRequest cuerpo para reprogramar un vuelo
type RescheduleFlightRequest struct {
	FlightDate    string    `json:"flight_date"`
	DepartureTime TimeOfDay `json:"departure_time"`
	ArrivalTime   TimeOfDay `json:"arrival_time"`
	Gate          *string   `json:"gate,omitempty"`
}

// Validate valida la petición y retorna la fecha parseada
func (r *RescheduleFlightRequest) Validate() (time.Time, error) {
	if r.DepartureTime == r.ArrivalTime {
		return time.Time{}, ErrInvalidFlight().WithDetail("error", "departure and arrival times must differ")
	}
	return ParseDate(r.FlightDate)
}

// ParseDate parsea una fecha YYYY-MM-DD en UTC
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrInvalidFlight().WithDetail("field", "flight_date")
	}
	return d, nil
}

// ============================================================================
// Error Registry - Errores específicos de Flight
// ============================================================================

var ErrRegistry = errx.NewRegistry("FLIGHT")

// Códigos de error
var (
	CodeFlightNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Flight not found")
	CodeFlightAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Flight already exists for that date")
	CodeInvalidFlight       = ErrRegistry.Register("INVALID", errx.TypeValidation, http.StatusBadRequest, "Invalid flight")
)

// Helper functions para crear errores
func ErrFlightNotFound() *errx.Error {
	return ErrRegistry.New(CodeFlightNotFound)
}

func ErrFlightAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeFlightAlreadyExists)
}

func ErrInvalidFlight() *errx.Error {
	return ErrRegistry.New(CodeInvalidFlight)
}
