package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default candidate locations for the two datasets. The repo-relative
// path is preferred; the deep relative path matches the original field
// campaign layout.
var (
	defaultNavPaths = []string{
		"data/observations/processed/bbr_BACSAM2_p6_processed.nc",
		"../../../data/observations/processed/bbr_BACSAM2_p6_processed.nc",
	}
	defaultSICPaths = []string{
		"data/observations/processed/satellite_unified/sic_modis-aqua_amsr2-gcom-w1_merged_nh_1000m_APRIL.nc",
		"../../../data/observations/processed/satellite_unified/sic_modis-aqua_amsr2-gcom-w1_merged_nh_1000m_APRIL.nc",
	}
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	NavPaths []string // candidate paths for the navigation dataset
	SICPaths []string // candidate paths for the sea-ice dataset

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dashboard control defaults.
	DefaultCoarsen    int
	DefaultMarkerSize int
	DefaultAlpha      float64

	// Basemap (Mapbox static images) configuration.
	BasemapToken     string
	BasemapEnabled   bool
	BasemapTimeout   time.Duration
	BasemapCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	basemapTimeout, err := parseDuration("BASEMAP_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	coarsen, err := parseInt("DEFAULT_COARSEN", 20)
	if err != nil {
		return nil, err
	}
	markerSize, err := parseInt("DEFAULT_MARKER_SIZE", 5)
	if err != nil {
		return nil, err
	}
	alpha, err := parseFloat("DEFAULT_ALPHA", 0.9)
	if err != nil {
		return nil, err
	}

	basemapToken := os.Getenv("BASEMAP_TOKEN")
	basemapEnabled := basemapToken != ""
	if v := os.Getenv("BASEMAP_ENABLED"); v != "" {
		basemapEnabled = v == "true"
	}

	cfg := &Config{
		NavPaths:        parsePaths(os.Getenv("NAV_DATASET_PATHS"), defaultNavPaths),
		SICPaths:        parsePaths(os.Getenv("SIC_DATASET_PATHS"), defaultSICPaths),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DefaultCoarsen:    coarsen,
		DefaultMarkerSize: markerSize,
		DefaultAlpha:      alpha,

		BasemapToken:     basemapToken,
		BasemapEnabled:   basemapEnabled,
		BasemapTimeout:   basemapTimeout,
		BasemapCacheSize: parseCacheSize(),
	}

	if len(cfg.NavPaths) == 0 {
		return nil, errors.New("NAV_DATASET_PATHS is required")
	}
	if len(cfg.SICPaths) == 0 {
		return nil, errors.New("SIC_DATASET_PATHS is required")
	}
	if cfg.DefaultCoarsen < 1 || cfg.DefaultCoarsen > 300 {
		return nil, errors.New("DEFAULT_COARSEN must be in [1, 300]")
	}
	if cfg.DefaultMarkerSize < 1 || cfg.DefaultMarkerSize > 20 {
		return nil, errors.New("DEFAULT_MARKER_SIZE must be in [1, 20]")
	}
	if cfg.DefaultAlpha < 0.1 || cfg.DefaultAlpha > 1.0 {
		return nil, errors.New("DEFAULT_ALPHA must be in [0.1, 1.0]")
	}
	if cfg.BasemapEnabled && cfg.BasemapToken == "" {
		return nil, errors.New("BASEMAP_ENABLED is true but BASEMAP_TOKEN is not set")
	}

	return cfg, nil
}

// ResolvePath returns the first existing candidate path. When none
// exists it returns the first candidate so the subsequent open error
// names a concrete file.
func ResolvePath(candidates []string) string {
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[0]
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parsePaths splits a comma-separated path list, falling back to def
// when the variable is unset.
func parsePaths(v string, def []string) []string {
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseCacheSize() int {
	if s := os.Getenv("BASEMAP_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 100
}
