package flightinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"
	"github.com/Abraxas-365/skyport/flight"
	"github.com/Abraxas-365/skyport/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const flightColumns = `
			id, tenant_id, flight_number, airline, origin, destination,
			flight_date, departure_time, arrival_time, gate, status,
			created_at, updated_at`

var (
	_ flight.FlightRepository      = (*PostgresFlightRepository)(nil)
	_ flight.FleetStatusRepository = (*PostgresFlightRepository)(nil)
)

// PostgresFlightRepository implementación de PostgreSQL para los repositorios de vuelos
type PostgresFlightRepository struct {
	db *sqlx.DB
}

// NewPostgresFlightRepository crea una nueva instancia del repositorio de vuelos
func NewPostgresFlightRepository(db *sqlx.DB) *PostgresFlightRepository {
	return &PostgresFlightRepository{
		db: db,
	}
}

// FindByTenant lista los vuelos de un tenant ordenados por salida
func (r *PostgresFlightRepository) FindByTenant(ctx context.Context, tenantID kernel.TenantID) ([]*flight.Flight, error) {
	query := `
		SELECT` + flightColumns + `
		FROM flights
		WHERE tenant_id = $1
		ORDER BY flight_date ASC, departure_time ASC`

	var flights []flight.Flight
	if err := r.db.SelectContext(ctx, &flights, query, tenantID.String()); err != nil {
		return nil, errx.Wrap(err, "failed to find flights by tenant", errx.TypeInternal).
			WithDetail("tenant_id", tenantID.String())
	}

	return toPointers(flights), nil
}

// FindByID busca un vuelo por ID dentro de un tenant
func (r *PostgresFlightRepository) FindByID(ctx context.Context, id kernel.FlightID, tenantID kernel.TenantID) (*flight.Flight, error) {
	query := `
		SELECT` + flightColumns + `
		FROM flights
		WHERE id = $1 AND tenant_id = $2`

	var f flight.Flight
	err := r.db.GetContext(ctx, &f, query, id.String(), tenantID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flight.ErrFlightNotFound().WithDetail("flight_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find flight by id", errx.TypeInternal).
			WithDetail("flight_id", id.String())
	}

	return &f, nil
}

// Save inserta o actualiza un vuelo. Un id que ya existe en otro tenant no se
// modifica y se reporta como no encontrado.
func (r *PostgresFlightRepository) Save(ctx context.Context, f flight.Flight) error {
	query := `
		INSERT INTO flights (` + flightColumns + `
		) VALUES (
			:id, :tenant_id, :flight_number, :airline, :origin, :destination,
			:flight_date, :departure_time, :arrival_time, :gate, :status,
			:created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			flight_number = EXCLUDED.flight_number,
			airline = EXCLUDED.airline,
			origin = EXCLUDED.origin,
			destination = EXCLUDED.destination,
			flight_date = EXCLUDED.flight_date,
			departure_time = EXCLUDED.departure_time,
			arrival_time = EXCLUDED.arrival_time,
			gate = EXCLUDED.gate,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		WHERE flights.tenant_id = EXCLUDED.tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, f)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return flight.ErrFlightAlreadyExists().
				WithDetail("flight_number", f.FlightNumber).
				WithDetail("flight_date", f.FlightDate.Format(time.DateOnly))
		}
		return errx.Wrap(err, "failed to save flight", errx.TypeInternal).
			WithDetail("flight_id", f.ID.String())
	}

	return requireRow(result, f.ID)
}

// Delete elimina un vuelo del tenant
func (r *PostgresFlightRepository) Delete(ctx context.Context, id kernel.FlightID, tenantID kernel.TenantID) error {
	query := `DELETE FROM flights WHERE id = $1 AND tenant_id = $2`

	result, err := r.db.ExecContext(ctx, query, id.String(), tenantID.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete flight", errx.TypeInternal).
			WithDetail("flight_id", id.String())
	}

	return requireRow(result, id)
}

// FindAll lista los vuelos de todos los tenants
func (r *PostgresFlightRepository) FindAll(ctx context.Context) ([]*flight.Flight, error) {
	query := `
		SELECT` + flightColumns + `
		FROM flights
		ORDER BY tenant_id, flight_date, departure_time`

	var flights []flight.Flight
	if err := r.db.SelectContext(ctx, &flights, query); err != nil {
		logx.Error("Error fetching fleet: %v", err)
		return nil, errx.Wrap(err, "failed to find all flights", errx.TypeInternal)
	}

	return toPointers(flights), nil
}

// UpdateStatus persiste solo el estado. La condición por estado evita escribir
// una fila que ya tiene ese valor.
func (r *PostgresFlightRepository) UpdateStatus(ctx context.Context, id kernel.FlightID, tenantID kernel.TenantID, status flight.Status, updatedAt time.Time) error {
	query := `
		UPDATE flights SET status = $1, updated_at = $2
		WHERE id = $3 AND tenant_id = $4 AND status IS DISTINCT FROM $1`

	if _, err := r.db.ExecContext(ctx, query, status.String(), updatedAt, id.String(), tenantID.String()); err != nil {
		return errx.Wrap(err, "failed to update flight status", errx.TypeInternal).
			WithDetail("flight_id", id.String()).
			WithDetail("status", status.String())
	}

	return nil
}

func requireRow(result sql.Result, id kernel.FlightID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return flight.ErrFlightNotFound().WithDetail("flight_id", id.String())
	}
	return nil
}

func toPointers(flights []flight.Flight) []*flight.Flight {
	result := make([]*flight.Flight, len(flights))
	for i := range flights {
		result[i] = &flights[i]
	}
	return result
}
