package netcdf

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arctictools/nav-quicklook/internal/config"
	"github.com/arctictools/nav-quicklook/internal/domain"
	"github.com/arctictools/nav-quicklook/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadStore(t *testing.T) {
	dir := t.TempDir()
	navPath := filepath.Join(dir, "nav.nc")
	sicPath := filepath.Join(dir, "sic.nc")
	require.NoError(t, WriteTrack(navPath, fixtureTrack(120)))
	require.NoError(t, WriteIceGrid(sicPath, fixtureGrid()))

	cfg := &config.Config{
		NavPaths: []string{filepath.Join(dir, "preferred-missing.nc"), navPath},
		SICPaths: []string{sicPath},
	}

	frozen := clockwork.NewFakeClockAt(time.Date(2017, 4, 10, 8, 0, 0, 0, time.UTC))
	domain.SetClock(frozen)
	t.Cleanup(func() { domain.SetClock(nil) })

	store, err := LoadStore(cfg, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	assert.Equal(t, []string{"2017-04-02"}, store.Days())
	assert.Equal(t, 120, store.Track.Len())
	assert.Equal(t, 2, store.Ice.Steps())
	assert.True(t, store.LoadedAt().Equal(frozen.Now()))
	assert.NoError(t, store.CheckReadiness(context.Background()))
}

func TestLoadStore_MissingNavFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nav.nc")
	cfg := &config.Config{
		NavPaths: []string{missing},
		SICPaths: []string{filepath.Join(dir, "sic.nc")},
	}

	_, err := LoadStore(cfg, discardLogger(), observability.NewMetricsForTesting())
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing, "load failure names the first candidate path")
}

func TestNewStore_NoDays(t *testing.T) {
	_, err := newStore(domain.FlightTrack{}, domain.IceGrid{}, "empty.nc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoDays)
	assert.Contains(t, err.Error(), "empty.nc")
}

func TestStore_CheckReadiness_NotLoaded(t *testing.T) {
	var s *Store
	assert.Error(t, s.CheckReadiness(context.Background()))
	assert.Error(t, (&Store{}).CheckReadiness(context.Background()))
}
