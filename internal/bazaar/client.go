package bazaar

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.hypixel.net"

const (
	// Snapshot fetches retry on failure with a fixed delay, no backoff growth.
	snapshotRetryDelay = 500 * time.Millisecond
	// Per-product price requests are spaced out and retried faster.
	productRetryDelay = 100 * time.Millisecond
	maxFetchAttempts  = 5
)

// Client is a rate-limited HTTP client for the bazaar API.
type Client struct {
	http      *http.Client
	sem       chan struct{}
	limiter   *rate.Limiter // spaces per-product price requests
	baseURL   string
	apiKey    string
	snapshots *SnapshotCache
}

// NewClient creates a bazaar client. The API base URL and key come from the
// BAZAAR_API_URL / BAZAAR_API_KEY environment variables when set.
func NewClient() *Client {
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		sem:       make(chan struct{}, 10),
		limiter:   rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		baseURL:   envOrDefault("BAZAAR_API_URL", defaultBaseURL),
		apiKey:    os.Getenv("BAZAAR_API_KEY"),
		snapshots: NewSnapshotCache(60 * time.Second),
	}
}

// HealthCheck pings the API to verify connectivity.
func (c *Client) HealthCheck() bool {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.GetJSON("/skyblock/bazaar/products", nil, &resp); err != nil {
		return false
	}
	return resp.Success
}

// GetJSON fetches an API endpoint and decodes JSON into dst. The API key, when
// configured, is passed as a query parameter.
func (c *Client) GetJSON(endpoint string, params url.Values, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "bazaar-flipper/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bazaar %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
