package flight

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlight(date string, dep, arr TimeOfDay) Flight {
	d, _ := ParseDate(date)
	return Flight{ID: "f-1", TenantID: "acme", FlightDate: d, DepartureTime: dep, ArrivalTime: arr, Status: StatusScheduled}
}

func TestDeriveStatus(t *testing.T) {
	departure := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	arrival := departure.Add(3 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"well before boarding", departure.Add(-2 * time.Hour), StatusScheduled},
		{"just before boarding", departure.Add(-BoardingWindow - time.Second), StatusScheduled},
		{"boarding opens", departure.Add(-BoardingWindow), StatusBoarding},
		{"thirty minutes before", departure.Add(-30 * time.Minute), StatusBoarding},
		{"departure", departure, StatusInAir},
		{"five minutes after departure", departure.Add(5 * time.Minute), StatusInAir},
		{"arrival", arrival, StatusLanded},
		{"an hour after arrival", arrival.Add(time.Hour), StatusLanded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.now, departure, arrival))
		})
	}

	assert.Equal(t, StatusUnknown, DeriveStatus(departure, time.Time{}, arrival))
	assert.Equal(t, StatusUnknown, DeriveStatus(departure, arrival, departure))
}

func TestFlight_OvernightWindow(t *testing.T) {
	f := newFlight("2026-03-10", MustTimeOfDay(23, 0), MustTimeOfDay(1, 0))

	departure, arrival := f.Window(time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), departure)
	assert.Equal(t, time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), arrival)

	assert.Equal(t, StatusInAir, f.DeriveStatus(time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, StatusLanded, f.DeriveStatus(time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, StatusBoarding, f.DeriveStatus(time.Date(2026, 3, 10, 22, 15, 0, 0, time.UTC), time.UTC))
}

func TestFlight_WindowUsesLocation(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	f := newFlight("2026-03-10", MustTimeOfDay(8, 0), MustTimeOfDay(10, 30))

	departure, _ := f.Window(lima)
	assert.Equal(t, time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC), departure.UTC())
}

func TestFlight_Refresh(t *testing.T) {
	f := newFlight("2026-03-10", MustTimeOfDay(12, 0), MustTimeOfDay(15, 0))
	now := time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)

	assert.True(t, f.Refresh(now, time.UTC))
	assert.Equal(t, StatusBoarding, f.Status)
	assert.Equal(t, now, f.UpdatedAt)

	assert.False(t, f.Refresh(now.Add(time.Minute), time.UTC))
	assert.Equal(t, now, f.UpdatedAt)
}

func TestFlight_MissingDateIsUnknown(t *testing.T) {
	f := Flight{DepartureTime: MustTimeOfDay(12, 0), ArrivalTime: MustTimeOfDay(13, 0)}
	assert.Equal(t, StatusUnknown, f.DeriveStatus(time.Now(), time.UTC))
}

func TestTimeOfDay(t *testing.T) {
	for input, want := range map[string]string{
		"08:05":           "08:05",
		"23:59:30":        "23:59:30",
		"07:00:00":        "07:00",
		"14:30:00.000000": "14:30",
	} {
		got, err := ParseTimeOfDay(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got.String(), input)
	}

	for _, input := range []string{"", "24:00", "7", "aa:bb"} {
		_, err := ParseTimeOfDay(input)
		assert.Error(t, err, input)
	}

	var scanned TimeOfDay
	require.NoError(t, scanned.Scan([]byte("21:45:00")))
	assert.Equal(t, MustTimeOfDay(21, 45), scanned)
	require.NoError(t, scanned.Scan(time.Date(0, 1, 1, 6, 15, 0, 0, time.UTC)))
	assert.Equal(t, MustTimeOfDay(6, 15), scanned)
	assert.Error(t, scanned.Scan(42))

	v, err := MustTimeOfDay(9, 30).Value()
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", v)

	var req CreateFlightRequest
	require.NoError(t, json.Unmarshal([]byte(`{"departure_time":"23:00","arrival_time":"01:15"}`), &req))
	assert.Equal(t, MustTimeOfDay(23, 0), req.DepartureTime)
	assert.Equal(t, MustTimeOfDay(1, 15), req.ArrivalTime)
	assert.Error(t, json.Unmarshal([]byte(`{"departure_time":"noon"}`), &req))
}

func TestCreateFlightRequest_Validate(t *testing.T) {
	req := CreateFlightRequest{
		FlightNumber:  " la2045 ",
		Origin:        "lim",
		Destination:   "cuz",
		FlightDate:    "2026-03-10",
		DepartureTime: MustTimeOfDay(9, 0),
		ArrivalTime:   MustTimeOfDay(10, 20),
	}
	date, err := req.Validate()
	require.NoError(t, err)
	assert.Equal(t, "LA2045", req.FlightNumber)
	assert.Equal(t, "LIM", req.Origin)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), date)

	bad := req
	bad.Destination = "LIM"
	_, err = bad.Validate()
	assert.Error(t, err)

	bad = req
	bad.FlightDate = "10/03/2026"
	_, err = bad.Validate()
	assert.Error(t, err)

	bad = req
	bad.ArrivalTime = bad.DepartureTime
	_, err = bad.Validate()
	assert.Error(t, err)
}
