package netcdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arctictools/nav-quicklook/internal/config"
	"github.com/arctictools/nav-quicklook/internal/domain"
	"github.com/arctictools/nav-quicklook/internal/observability"
)

// ErrNoDays is returned when the navigation time coordinate yields no
// calendar days; the dashboard cannot offer a day selector without one.
var ErrNoDays = errors.New("no days found in navigation dataset - check the dataset path and time coordinate")

// Store is the process-lifetime, read-only handle to the loaded
// datasets. It is built once at startup and shared by every request.
type Store struct {
	Track domain.FlightTrack
	Ice   domain.IceGrid

	days     []string
	loadedAt time.Time
}

// LoadStore resolves both dataset paths, loads them, and validates that
// at least one day is present. The returned store is immutable.
func LoadStore(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	start := domain.Clock().Now()

	navPath := config.ResolvePath(cfg.NavPaths)
	track, err := LoadTrack(navPath)
	if err != nil {
		return nil, err
	}

	sicPath := config.ResolvePath(cfg.SICPaths)
	ice, err := LoadIceGrid(sicPath)
	if err != nil {
		return nil, err
	}

	store, err := newStore(track, ice, navPath)
	if err != nil {
		return nil, err
	}
	days := store.days

	elapsed := domain.Clock().Since(start)
	metrics.DatasetLoadDuration.Observe(elapsed.Seconds())
	metrics.NavSamples.Set(float64(track.Len()))
	metrics.NavDays.Set(float64(len(days)))
	metrics.IceSteps.Set(float64(ice.Steps()))
	metrics.StoreReady.Set(1)

	logger.Info("datasets loaded",
		"nav_path", navPath,
		"sic_path", sicPath,
		"nav_samples", track.Len(),
		"days", len(days),
		"ice_steps", ice.Steps(),
		"elapsed", elapsed,
	)

	return store, nil
}

// newStore validates the loaded datasets and assembles the handle.
func newStore(track domain.FlightTrack, ice domain.IceGrid, navPath string) (*Store, error) {
	days := track.Days()
	if len(days) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrNoDays, navPath)
	}
	return &Store{
		Track:    track,
		Ice:      ice,
		days:     days,
		loadedAt: domain.Clock().Now(),
	}, nil
}

// Days returns the sorted calendar days available for selection.
func (s *Store) Days() []string {
	return s.days
}

// LoadedAt reports when the datasets were loaded.
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}

// CheckReadiness returns nil once the store holds a non-empty track.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s == nil || len(s.days) == 0 {
		return errors.New("datasets not loaded")
	}
	return nil
}
