package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arctictools/nav-quicklook/internal/adapter/netcdf"
	"github.com/arctictools/nav-quicklook/internal/config"
	"github.com/arctictools/nav-quicklook/internal/domain"
	"github.com/arctictools/nav-quicklook/internal/observability"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	navPath := filepath.Join(dir, "nav.nc")
	sicPath := filepath.Join(dir, "sic.nc")

	base := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	track := domain.FlightTrack{}
	for i := 0; i < 60; i++ {
		track.Time = append(track.Time, base.Add(time.Duration(i)*time.Minute))
		track.Altitude = append(track.Altitude, 3000+float64(i))
		track.Pitch = append(track.Pitch, 1.5)
		track.Roll = append(track.Roll, -0.5)
		track.BrightnessTemp = append(track.BrightnessTemp, 250+float64(i)*0.1)
		track.Latitude = append(track.Latitude, 80+float64(i)*0.01)
		track.Longitude = append(track.Longitude, 10+float64(i)*0.02)
	}
	track.HourOfDay = domain.DeriveHourOfDay(track.Time)
	require.NoError(t, netcdf.WriteTrack(navPath, track))

	grid := domain.IceGrid{
		Time: []time.Time{base},
		Lat:  [][]float64{{79.9, 79.9}, {80.6, 80.6}},
		Lon:  [][]float64{{9.9, 11.3}, {9.9, 11.3}},
		Conc: [][][]float64{{{80, 90}, {70, 60}}},
	}
	require.NoError(t, netcdf.WriteIceGrid(sicPath, grid))

	cfg := &config.Config{
		NavPaths:          []string{navPath},
		SICPaths:          []string{sicPath},
		HTTPAddr:          ":0",
		DefaultCoarsen:    5,
		DefaultMarkerSize: 5,
		DefaultAlpha:      0.9,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	store, err := netcdf.LoadStore(cfg, logger, metrics)
	require.NoError(t, err)

	return NewServer(cfg, store, nil, logger, metrics)
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDashboard(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "2024-03-14")
	assert.Contains(t, rec.Body.String(), "/plots/map.png")
}

func TestDaysAPI(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/api/days")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Days []string `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"2024-03-14"}, body.Days)
}

func TestDayBounds(t *testing.T) {
	srv := testServer(t)

	t.Run("known day", func(t *testing.T) {
		rec := get(t, srv, "/api/days/2024-03-14/bounds")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "2024-03-14T10:00:00Z", body["start"])
		assert.Equal(t, "2024-03-14T10:59:00Z", body["end"])
	})

	t.Run("unknown day", func(t *testing.T) {
		rec := get(t, srv, "/api/days/2024-01-01/bounds")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed day", func(t *testing.T) {
		rec := get(t, srv, "/api/days/yesterday/bounds")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTimeseriesPlot(t *testing.T) {
	srv := testServer(t)

	t.Run("defaults", func(t *testing.T) {
		rec := get(t, srv, "/plots/timeseries.png")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "\x89PNG", rec.Body.String()[:4])
	})

	t.Run("full query", func(t *testing.T) {
		rec := get(t, srv, "/plots/timeseries.png?day=2024-03-14&coarsen=10&size=3&alpha=0.5&from=2024-03-14T10:10:00Z&to=2024-03-14T10:50:00Z")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	})

	t.Run("invalid coarsen", func(t *testing.T) {
		rec := get(t, srv, "/plots/timeseries.png?coarsen=0")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "coarsen")
	})

	t.Run("invalid alpha", func(t *testing.T) {
		rec := get(t, srv, "/plots/timeseries.png?alpha=2")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inverted range", func(t *testing.T) {
		rec := get(t, srv, "/plots/timeseries.png?from=2024-03-14T11:00:00Z&to=2024-03-14T10:00:00Z")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown day", func(t *testing.T) {
		rec := get(t, srv, "/plots/timeseries.png?day=2024-12-25")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "2024-12-25")
	})

	t.Run("malformed day", func(t *testing.T) {
		rec := get(t, srv, "/plots/timeseries.png?day=tomorrow")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMapPlot(t *testing.T) {
	srv := testServer(t)

	t.Run("with ice layer", func(t *testing.T) {
		rec := get(t, srv, "/plots/map.png?sic=true")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	})

	t.Run("ice layer off", func(t *testing.T) {
		rec := get(t, srv, "/plots/map.png?sic=false")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid size", func(t *testing.T) {
		rec := get(t, srv, "/plots/map.png?size=99")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown day", func(t *testing.T) {
		rec := get(t, srv, "/plots/map.png?day=2024-12-25")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
