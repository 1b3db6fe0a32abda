// Package nominatim provides the text geocoder client: forward keyword
// search, reverse lookup by coordinate, and address autocomplete.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"smartlocations_backend/internal/geo"
	"smartlocations_backend/platform/logger"
)

// viewboxDegreesPerKm converts a search radius to the half-width of the
// viewbox restricting a bounded keyword search.
const viewboxDegreesPerKm = 0.015

// Client talks to a single Nominatim instance. Unlike the tag-query
// provider there is no mirror chain here; a failed call is reported to the
// caller, who decides whether it means "no results" or an error.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a geocoder client. userAgent is the declared client
// identity required by the Nominatim usage policy.
func NewClient(baseURL, userAgent string, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Search runs a bounded forward search for keyword around origin. The
// viewbox spans radiusKm in each direction and results are capped at limit.
func (c *Client) Search(ctx context.Context, keyword string, origin geo.Coordinate, radiusKm float64, limit int) ([]SearchResult, error) {
	delta := radiusKm * viewboxDegreesPerKm
	viewbox := fmt.Sprintf("%f,%f,%f,%f",
		origin.Lon-delta, origin.Lat+delta, origin.Lon+delta, origin.Lat-delta)

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("bounded", "1")
	params.Set("viewbox", viewbox)
	params.Set("addressdetails", "1")
	params.Set("extratags", "1")

	var results []SearchResult
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Reverse looks up the display name and address breakdown for a coordinate.
func (c *Client) Reverse(ctx context.Context, coord geo.Coordinate) (*ReverseResult, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("zoom", "14")
	params.Set("addressdetails", "1")

	var result ReverseResult
	if err := c.get(ctx, "/reverse", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Lookup runs an unbounded forward search tuned for address autocomplete
// and returns normalized suggestions. Hits without a street or city-like
// component are skipped.
func (c *Client) Lookup(ctx context.Context, query string) ([]AddressSuggestion, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "8")
	params.Set("accept-language", "en")

	var rawResults []SearchResult
	if err := c.get(ctx, "/search", params, &rawResults); err != nil {
		return nil, err
	}

	suggestions := make([]AddressSuggestion, 0, len(rawResults))
	for _, raw := range rawResults {
		suggestion, ok := buildSuggestion(raw)
		if !ok {
			continue
		}

		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.log != nil {
			c.log.UpstreamError("nominatim", path, err)
		}
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("upstream api error: %d", resp.StatusCode)
		if c.log != nil {
			c.log.UpstreamError("nominatim", path, err)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if c.log != nil {
			c.log.UpstreamError("nominatim", path, err)
		}
		return err
	}

	return nil
}
