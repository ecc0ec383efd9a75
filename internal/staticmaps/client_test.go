package staticmaps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagery-dataset/internal/mercator"
	"imagery-dataset/internal/plan"
)

func testConfig() mercator.Config {
	return mercator.Config{CenterLat: 36.1699390, CenterLng: -115.1398269, Zoom: 17, Scale: 2, ImageSize: 640, Overlap: 0.1}
}

func firstEntry(t *testing.T) plan.Entry {
	entries, err := plan.Build(testConfig(), 1)
	require.NoError(t, err)
	return entries[0]
}

func TestTileURL(t *testing.T) {
	c := NewClient(testConfig(), "secret")
	e := plan.Entry{Filename: "img0_0_36.0_-115.0_zoom18.png", Coordinate: mercator.TileCoordinate{Lat: 36, Lng: -115.201625}}

	assert.Equal(t,
		"https://maps.googleapis.com/maps/api/staticmap?zoom=17&size=640x640&scale=2&maptype=satellite&center=36.0,-115.201625",
		c.TileURL(e))
	assert.NotContains(t, c.TileURL(e), "secret")
	assert.Contains(t, c.requestURL(e), "&key=secret")
}

func TestFetchTile(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(), "k1")
	c.SetBaseURL(srv.URL)

	data, err := c.FetchTile(context.Background(), firstEntry(t))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Contains(t, gotQuery, "zoom=17&size=640x640&scale=2&maptype=satellite&center=")
	assert.Contains(t, gotQuery, "key=k1")
	assert.Equal(t, UserAgent, gotAgent)
}

func TestFetchTileNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(testConfig(), "")
	c.SetBaseURL(srv.URL)
	e := firstEntry(t)

	_, err := c.FetchTile(context.Background(), e)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, e.Filename, statusErr.Filename)
}

func TestFetchTileRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(testConfig(), "very-secret")
	c.SetBaseURL(srv.URL)

	_, err := c.FetchTile(context.Background(), firstEntry(t))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "very-secret")
}

func TestFetchTileCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(), "")
	c.SetBaseURL(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchTile(ctx, firstEntry(t))
	assert.ErrorIs(t, err, context.Canceled)
}
