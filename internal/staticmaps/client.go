package staticmaps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"imagery-dataset/internal/mercator"
	"imagery-dataset/internal/plan"
	"imagery-dataset/internal/utils/naming"
)

const (
	// Google Static Maps endpoint
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/staticmap"

	// User agent
	UserAgent = "imagery-dataset/1.0 (+satellite tile collector)"

	MapTypeSatellite = "satellite"
)

// StatusError is returned for any non-200 response. It is fatal for the tile.
type StatusError struct {
	StatusCode int
	Filename   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received a %d error when requesting img: %s", e.StatusCode, e.Filename)
}

// Client requests satellite images centered on plan entries
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	zoom       int
	imageSize  int
	scale      float64
}

// NewClient creates a static maps client with system proxy support. Requests use the
// nominal zoom, image size and scale of cfg; apiKey may be empty.
func NewClient(cfg mercator.Config, apiKey string) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		zoom:      cfg.Zoom,
		imageSize: cfg.ImageSize,
		scale:     cfg.Scale,
	}
}

// SetBaseURL points the client at another endpoint
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// TileURL returns the request URL for e, without the API key.
func (c *Client) TileURL(e plan.Entry) string {
	return fmt.Sprintf("%s?zoom=%d&size=%dx%d&scale=%s&maptype=%s&center=%s,%s",
		c.baseURL, c.zoom, c.imageSize, c.imageSize,
		strconv.FormatFloat(c.scale, 'f', -1, 64), MapTypeSatellite,
		naming.FormatCoordinate(e.Coordinate.Lat), naming.FormatCoordinate(e.Coordinate.Lng))
}

func (c *Client) requestURL(e plan.Entry) string {
	u := c.TileURL(e)
	if c.apiKey != "" {
		u += "&key=" + url.QueryEscape(c.apiKey)
	}
	return u
}

// FetchTile downloads the image for e
func (c *Client) FetchTile(ctx context.Context, e plan.Entry) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(e), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", c.redact(err, e))
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tile: %w", c.redact(err, e))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Filename: e.Filename}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile: %w", c.redact(err, e))
	}
	return data, nil
}

// redact strips the API key from URLs embedded in transport errors.
func (c *Client) redact(err error, e plan.Entry) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = c.TileURL(e)
	}
	return err
}
