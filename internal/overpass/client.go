package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smartlocations_backend/platform/logger"
)

const (
	// queryTimeout bounds a single mirror attempt for a standard search,
	// generous enough to cover the server-side Overpass timeout.
	queryTimeout = 50 * time.Second
	// trackingTimeout is the tighter bound used for live-tracking
	// re-queries, where a stale answer is worthless.
	trackingTimeout = 30 * time.Second
)

// LatLon is the center substructure Overpass attaches to extended
// geometries when asked for "out center".
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one raw entity from an Overpass response. Nodes carry direct
// coordinates; ways and relations carry a center point instead. Either may
// be absent for malformed upstream records.
type Element struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *LatLon           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type apiResponse struct {
	Elements []Element `json:"elements"`
	Remark   string    `json:"remark"`
}

// EndpointsError reports that every configured mirror failed. It carries
// the last observed error for diagnostics.
type EndpointsError struct {
	Attempts int
	LastErr  error
}

func (e *EndpointsError) Error() string {
	return fmt.Sprintf("all %d overpass endpoints failed: %v", e.Attempts, e.LastErr)
}

func (e *EndpointsError) Unwrap() error {
	return e.LastErr
}

// Client issues queries against an ordered list of semantically equivalent
// Overpass mirrors, trying each in sequence until one succeeds. Attempts
// are never raced: one endpoint is in flight at a time, as a politeness
// tradeoff toward free public services.
type Client struct {
	endpoints  []string
	httpClient *http.Client
	userAgent  string
	log        *logger.Logger
}

// NewClient creates a fetcher over the given mirror list (fastest first).
func NewClient(endpoints []string, userAgent string, log *logger.Logger) *Client {
	return &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{},
		userAgent:  userAgent,
		log:        log,
	}
}

// Query runs the query with the standard per-attempt timeout.
func (c *Client) Query(ctx context.Context, query string) ([]Element, error) {
	return c.query(ctx, query, queryTimeout)
}

// QueryTracking runs the query with the shorter tracking-mode timeout.
func (c *Client) QueryTracking(ctx context.Context, query string) ([]Element, error) {
	return c.query(ctx, query, trackingTimeout)
}

func (c *Client) query(ctx context.Context, query string, timeout time.Duration) ([]Element, error) {
	var lastErr error

	for _, endpoint := range c.endpoints {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		elements, err := c.attempt(ctx, endpoint, query, timeout)
		if err != nil {
			lastErr = err
			if c.log != nil {
				c.log.UpstreamError("overpass", endpoint, err)
			}
			continue
		}

		return elements, nil
	}

	return nil, &EndpointsError{Attempts: len(c.endpoints), LastErr: lastErr}
}

// attempt issues one bounded request against one mirror. Failure is a
// non-2xx status, an unparseable body, or a body-embedded error remark.
func (c *Client) attempt(ctx context.Context, endpoint, query string, timeout time.Duration) ([]Element, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, endpoint)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid response from %s: %w", endpoint, err)
	}

	if strings.Contains(strings.ToLower(payload.Remark), "error") {
		return nil, fmt.Errorf("overpass error from %s: %s", endpoint, payload.Remark)
	}

	return payload.Elements, nil
}
