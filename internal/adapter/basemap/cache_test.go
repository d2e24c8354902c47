package basemap

import (
	"context"
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingFetcher struct {
	calls int
	img   image.Image
	err   error
}

func (m *countingFetcher) Static(_ context.Context, _ BBox, _, _ int) (image.Image, error) {
	m.calls++
	return m.img, m.err
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

// --- CachedFetcher tests ---

func TestCachedFetcher_Hit(t *testing.T) {
	inner := &countingFetcher{img: testImage()}
	cached := NewCachedFetcher(inner, 10)
	box := BBox{MinLon: 10, MinLat: 80, MaxLon: 11, MaxLat: 81}

	img1, err := cached.Static(context.Background(), box, 700, 520)
	require.NoError(t, err)
	require.NotNil(t, img1)

	img2, err := cached.Static(context.Background(), box, 700, 520)
	require.NoError(t, err)
	assert.Same(t, img1, img2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedFetcher_KeyIncludesSize(t *testing.T) {
	inner := &countingFetcher{img: testImage()}
	cached := NewCachedFetcher(inner, 10)
	box := BBox{MinLon: 10, MinLat: 80, MaxLon: 11, MaxLat: 81}

	_, err := cached.Static(context.Background(), box, 700, 520)
	require.NoError(t, err)
	_, err = cached.Static(context.Background(), box, 350, 260)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "different pixel sizes are distinct entries")
}

func TestCachedFetcher_ErrorsNotCached(t *testing.T) {
	inner := &countingFetcher{err: fmt.Errorf("boom")}
	cached := NewCachedFetcher(inner, 10)
	box := BBox{MinLon: 10, MinLat: 80, MaxLon: 11, MaxLat: 81}

	_, err := cached.Static(context.Background(), box, 700, 520)
	require.Error(t, err)
	_, err = cached.Static(context.Background(), box, 700, 520)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls, "failed fetches are retried")
}

func TestLRUCache_Eviction(t *testing.T) {
	cache := newLRUCache(2)
	a, b, c := testImage(), testImage(), testImage()

	cache.put("a", a)
	cache.put("b", b)

	// Touch "a" so "b" becomes least recently used.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", c)

	_, ok = cache.get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = cache.get("a")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}
