// Package basemap fetches static map imagery to draw underneath the
// geographic view. It is optional: when disabled or failing, the view
// renders without a basemap.
package basemap

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // static API may answer JPEG
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// BBox is a geographic bounding box in degrees.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

func (b BBox) String() string {
	return fmt.Sprintf("[%.4f,%.4f,%.4f,%.4f]", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// Fetcher provides a basemap image for a bounding box at a pixel size.
type Fetcher interface {
	Static(ctx context.Context, box BBox, width, height int) (image.Image, error)
}

// Client implements Fetcher using the Mapbox Static Images API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	style      string
	logger     *slog.Logger
}

// NewClient creates a Mapbox static-images client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/styles/v1",
		style:   "mapbox/light-v11",
		logger:  logger,
	}
}

// Static fetches a rendered basemap for the bounding box.
func (c *Client) Static(ctx context.Context, box BBox, width, height int) (image.Image, error) {
	u := fmt.Sprintf("%s/%s/static/%s/%dx%d", c.baseURL, c.style, box, width, height)
	params := url.Values{
		"access_token": {c.token},
		"attribution":  {"false"},
		"logo":         {"false"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("basemap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("basemap API error: status %d: %s", resp.StatusCode, body)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode basemap image: %w", err)
	}
	return img, nil
}
