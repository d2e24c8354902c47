package basemap

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, G: 220, B: 240, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Static(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t, 700, 520))
	}))
	defer srv.Close()

	client := NewClient("pk.test-token", 2*time.Second, testLogger())
	client.baseURL = srv.URL

	box := BBox{MinLon: 9.5, MinLat: 80.5, MaxLon: 11.5, MaxLat: 81.5}
	img, err := client.Static(context.Background(), box, 700, 520)
	require.NoError(t, err)
	require.NotNil(t, img)

	assert.Equal(t, 700, img.Bounds().Dx())
	assert.Contains(t, gotPath, "static/[9.5000,80.5000,11.5000,81.5000]/700x520")
	assert.Equal(t, []string{"pk.test-token"}, gotQuery["access_token"])
}

func TestClient_Static_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-token", 2*time.Second, testLogger())
	client.baseURL = srv.URL

	_, err := client.Static(context.Background(), BBox{}, 700, 520)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_Static_BadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	client := NewClient("pk.test-token", 2*time.Second, testLogger())
	client.baseURL = srv.URL

	_, err := client.Static(context.Background(), BBox{}, 700, 520)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode basemap image")
}
