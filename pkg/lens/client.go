// Package lens is a thin SerpApi Google Lens client. It submits a publicly
// reachable image URL and returns the ranked visually-similar listings.
package lens

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dittoscan/ditto/internal/resilience"
)

const defaultBaseURL = "https://serpapi.com"

// Client performs reverse image searches.
type Client interface {
	Search(ctx context.Context, imageURL string) (*SearchResponse, error)
}

// SearchResponse is the subset of the Google Lens payload the pipeline uses.
type SearchResponse struct {
	VisualMatches []VisualMatch `json:"visual_matches"`
}

// VisualMatch is one visually similar listing.
type VisualMatch struct {
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Source    string  `json:"source"`
	Price     *Price  `json:"price,omitempty"`
	Condition string  `json:"condition,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Reviews   int     `json:"reviews,omitempty"`
}

// Price is the listing price when the marketplace exposes one.
type Price struct {
	ExtractedValue float64 `json:"extracted_value"`
	Value          string  `json:"value"`
	Currency       string  `json:"currency"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a SerpApi Google Lens client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, imageURL string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("engine", "google_lens")
	params.Set("api_key", c.apiKey)
	params.Set("url", imageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "lens: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "lens: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "lens: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("lens: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "lens: unmarshal response")
	}

	return &result, nil
}
