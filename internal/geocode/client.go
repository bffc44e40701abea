// Package geocode is a thin client for a Nominatim-style reverse-geocoding
// endpoint. Lookups are best-effort: callers treat a failure as "no address",
// never as a failed trip write.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
)

// Client calls the reverse-geocoding endpoint with bounded retries.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New constructs a Client for the given base URL (e.g.
// "https://nominatim.openstreetmap.org"). The per-request timeout is fixed;
// overall cancellation comes from the caller's context.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Reverse resolves a human-readable address for the coordinate.
// The lookup is attempted up to four times (one try plus three retries) with
// exponentially growing delay; transport errors and 5xx responses are
// retried, 4xx responses are not. The last error is surfaced when every
// attempt fails.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	reqURL := c.baseURL + "/reverse?" + q.Encode()

	var address string
	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("geocode: server returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("geocode: server returned %d", resp.StatusCode)
		}

		var body struct {
			DisplayName string `json:"display_name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("geocode: decode response: %w", err)
		}
		address = body.DisplayName
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("geocode.Client.Reverse: %w", err)
	}
	return address, nil
}
