package flightinfra

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/skyport/flight"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flightRowColumns = []string{
	"id", "tenant_id", "flight_number", "airline", "origin", "destination",
	"flight_date", "departure_time", "arrival_time", "gate", "status",
	"created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*PostgresFlightRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewPostgresFlightRepository(sqlx.NewDb(raw, "postgres")), mock
}

var (
	day     = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	stamped = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func TestFindByTenant(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM flights\n\t\tWHERE tenant_id = $1")).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows(flightRowColumns).
			AddRow("f-1", "acme", "LA2045", "LATAM", "LIM", "CUZ", day, []byte("09:00:00"), []byte("10:20:00"), "A3", "SCHEDULED", stamped, stamped).
			AddRow("f-2", "acme", "LA2100", "LATAM", "LIM", "AQP", day, []byte("23:00:00"), []byte("01:00:00"), nil, "IN_AIR", stamped, stamped))

	flights, err := repo.FindByTenant(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, flights, 2)

	assert.Equal(t, flight.MustTimeOfDay(9, 0), flights[0].DepartureTime)
	require.NotNil(t, flights[0].Gate)
	assert.Equal(t, "A3", *flights[0].Gate)
	assert.Nil(t, flights[1].Gate)
	assert.Equal(t, flight.StatusInAir, flights[1].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND tenant_id = $2")).
		WithArgs("f-1", "globex").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "f-1", "globex")
	assert.True(t, errx.IsType(err, errx.TypeNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave(t *testing.T) {
	f := flight.Flight{
		ID:            "f-1",
		TenantID:      "acme",
		FlightNumber:  "LA2045",
		Airline:       "LATAM",
		Origin:        "LIM",
		Destination:   "CUZ",
		FlightDate:    day,
		DepartureTime: flight.MustTimeOfDay(9, 0),
		ArrivalTime:   flight.MustTimeOfDay(10, 20),
		Status:        flight.StatusScheduled,
		CreatedAt:     stamped,
		UpdatedAt:     stamped,
	}

	t.Run("stamps tenant and times", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO flights")).
			WithArgs("f-1", "acme", "LA2045", "LATAM", "LIM", "CUZ", day, "09:00:00", "10:20:00", nil, "SCHEDULED", stamped, stamped).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Save(context.Background(), f))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("id owned by another tenant", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("WHERE flights.tenant_id = EXCLUDED.tenant_id")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), f)
		assert.True(t, errx.IsType(err, errx.TypeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate flight number", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO flights")).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Save(context.Background(), f)
		assert.True(t, errx.IsType(err, errx.TypeConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM flights WHERE id = $1 AND tenant_id = $2")).
		WithArgs("f-1", "acme").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM flights WHERE id = $1 AND tenant_id = $2")).
		WithArgs("f-1", "globex").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "f-1", "acme"))
	assert.True(t, errx.IsType(repo.Delete(context.Background(), "f-1", "globex"), errx.TypeNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllAndUpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM flights\n\t\tORDER BY tenant_id")).
		WillReturnRows(sqlmock.NewRows(flightRowColumns).
			AddRow("f-1", "acme", "LA2045", "LATAM", "LIM", "CUZ", day, "09:00:00", "10:20:00", nil, "SCHEDULED", stamped, stamped).
			AddRow("f-9", "globex", "AV11", "Avianca", "BOG", "LIM", day, "11:00:00", "14:00:00", nil, "SCHEDULED", stamped, stamped))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flights SET status = $1")).
		WithArgs("BOARDING", stamped, "f-9", "globex").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flights SET status = $1")).
		WithArgs("LANDED", stamped, "f-1", "acme").
		WillReturnError(errors.New("deadlock detected"))

	flights, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, "globex", flights[1].TenantID.String())

	assert.NoError(t, repo.UpdateStatus(context.Background(), "f-9", "globex", flight.StatusBoarding, stamped))
	assert.Error(t, repo.UpdateStatus(context.Background(), "f-1", "acme", flight.StatusLanded, stamped))

	assert.NoError(t, mock.ExpectationsWereMet())
}
