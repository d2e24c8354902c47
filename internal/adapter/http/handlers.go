package http

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/arctictools/nav-quicklook/internal/adapter/basemap"
	"github.com/arctictools/nav-quicklook/internal/domain"
	"github.com/arctictools/nav-quicklook/internal/render"
)

// viewParams are the per-request dashboard control values.
type viewParams struct {
	Day        string
	Coarsen    int
	MarkerSize int
	Alpha      float64
	ShowIce    bool
	From, To   time.Time
}

// parseViewParams validates the plot query. Missing values fall back to
// the configured defaults and the first available day.
func (s *Server) parseViewParams(r *http.Request) (viewParams, error) {
	q := r.URL.Query()

	p := viewParams{
		Day:        s.store.Days()[0],
		Coarsen:    s.defaults.Coarsen,
		MarkerSize: s.defaults.MarkerSize,
		Alpha:      s.defaults.Alpha,
		ShowIce:    true,
	}

	if day := q.Get("day"); day != "" {
		if _, err := domain.ParseDay(day); err != nil {
			return viewParams{}, fmt.Errorf("invalid day %q", day)
		}
		if !slices.Contains(s.store.Days(), day) {
			return viewParams{}, fmt.Errorf("day %s is not in the dataset", day)
		}
		p.Day = day
	}
	if v := q.Get("coarsen"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 300 {
			return viewParams{}, fmt.Errorf("coarsen must be an integer in [1, 300]")
		}
		p.Coarsen = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 20 {
			return viewParams{}, fmt.Errorf("size must be an integer in [1, 20]")
		}
		p.MarkerSize = n
	}
	if v := q.Get("alpha"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil || a < 0.1 || a > 1.0 {
			return viewParams{}, fmt.Errorf("alpha must be in [0.1, 1.0]")
		}
		p.Alpha = a
	}
	if v := q.Get("sic"); v != "" {
		p.ShowIce = v == "true" || v == "1"
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return viewParams{}, fmt.Errorf("invalid from timestamp %q", v)
		}
		p.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return viewParams{}, fmt.Errorf("invalid to timestamp %q", v)
		}
		p.To = t
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.To.Before(p.From) {
		return viewParams{}, fmt.Errorf("time range is inverted")
	}
	return p, nil
}

// trackView slices the navigation dataset for the request: day slice,
// then coarsen, then time filter. Coarsening before filtering keeps the
// averaged samples stable while the range slider moves.
func (s *Server) trackView(p viewParams) (domain.FlightTrack, error) {
	day, err := s.store.Track.DaySlice(p.Day)
	if err != nil {
		return domain.FlightTrack{}, err
	}
	return day.Coarsen(p.Coarsen).FilterRange(p.From, p.To), nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	days := s.store.Days()
	first, _ := s.store.Track.DaySlice(days[0])
	start, end, _ := first.Bounds()

	data := struct {
		Days       []string
		Defaults   viewDefaults
		RangeStart string
		RangeEnd   string
		LoadedAt   string
	}{
		Days:       days,
		Defaults:   s.defaults,
		RangeStart: start.UTC().Format(time.RFC3339),
		RangeEnd:   end.UTC().Format(time.RFC3339),
		LoadedAt:   s.store.LoadedAt().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.Error("render dashboard template", "error", err)
	}
}

func (s *Server) handleDays(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"days": s.store.Days()})
}

func (s *Server) handleDayBounds(w http.ResponseWriter, r *http.Request) {
	day := r.PathValue("day")
	sel, err := s.store.Track.DaySlice(day)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	start, end, ok := sel.Bounds()
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no samples on day %s", day))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"day":   day,
		"start": start.UTC().Format(time.RFC3339),
		"end":   end.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	const plot = "timeseries"
	p, err := s.parseViewParams(r)
	if err != nil {
		s.metrics.RenderRequests.WithLabelValues(plot, "bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := domain.Clock().Now()
	view, err := s.trackView(p)
	if err != nil {
		s.metrics.RenderRequests.WithLabelValues(plot, "bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := render.DefaultTimeseriesOptions()
	opts.MarkerSize = p.MarkerSize
	opts.Alpha = p.Alpha

	data, err := render.Timeseries(view, opts)
	if err != nil {
		s.metrics.RenderRequests.WithLabelValues(plot, "error").Inc()
		s.logger.Error("render timeseries failed", "error", err, "day", p.Day)
		writeJSONError(w, http.StatusInternalServerError, "render failed")
		return
	}

	s.metrics.RenderRequests.WithLabelValues(plot, "success").Inc()
	s.metrics.RenderDuration.WithLabelValues(plot).Observe(domain.Clock().Since(start).Seconds())
	writePNG(w, data)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	const plot = "map"
	p, err := s.parseViewParams(r)
	if err != nil {
		s.metrics.RenderRequests.WithLabelValues(plot, "bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := domain.Clock().Now()
	view, err := s.trackView(p)
	if err != nil {
		s.metrics.RenderRequests.WithLabelValues(plot, "bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := render.DefaultMapOptions()
	opts.MarkerSize = p.MarkerSize + 1 // map markers run one step larger than the panels
	opts.Alpha = p.Alpha
	opts.ShowIce = p.ShowIce

	// The daily mean is independent of the time-range filter.
	ice := s.iceLayer(p)
	base := s.fetchBasemap(r.Context(), view, opts)

	data, err := render.GeoMap(view, ice, base, opts)
	if err != nil {
		s.metrics.RenderRequests.WithLabelValues(plot, "error").Inc()
		s.logger.Error("render map failed", "error", err, "day", p.Day)
		writeJSONError(w, http.StatusInternalServerError, "render failed")
		return
	}

	s.metrics.RenderRequests.WithLabelValues(plot, "success").Inc()
	s.metrics.RenderDuration.WithLabelValues(plot).Observe(domain.Clock().Since(start).Seconds())
	writePNG(w, data)
}

// iceLayer computes the selected day's mean concentration field, or nil
// when the layer is toggled off or the day has no ice data.
func (s *Server) iceLayer(p viewParams) *domain.IceLayer {
	if !p.ShowIce {
		return nil
	}
	day, err := s.store.Ice.DaySlice(p.Day)
	if err != nil {
		return nil
	}
	layer, ok := day.TimeMean()
	if !ok {
		return nil
	}
	return &layer
}

// fetchBasemap fetches the background map for the view frame. Failures
// degrade to rendering without a basemap.
func (s *Server) fetchBasemap(ctx context.Context, view domain.FlightTrack, opts render.MapOptions) image.Image {
	if s.basemap == nil {
		return nil
	}
	extent, ok := render.TrackExtent(view)
	if !ok {
		return nil
	}
	box := basemap.BBox{MinLon: extent.MinLon, MinLat: extent.MinLat, MaxLon: extent.MaxLon, MaxLat: extent.MaxLat}
	img, err := s.basemap.Static(ctx, box, opts.Width, opts.Height)
	if err != nil {
		s.metrics.BasemapRequests.WithLabelValues("error").Inc()
		s.logger.Warn("basemap fetch failed, rendering without it", "error", err, "bbox", box.String())
		return nil
	}
	s.metrics.BasemapRequests.WithLabelValues("success").Inc()
	return img
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data) //nolint:errcheck // client gone is not actionable
}
