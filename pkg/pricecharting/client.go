// Package pricecharting is a thin PriceCharting API client. Lookups are
// two-step: a free-text product search returning candidate IDs, then a
// per-candidate detail fetch returning the price bases and metadata.
package pricecharting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/dittoscan/ditto/internal/resilience"
)

const defaultBaseURL = "https://www.pricecharting.com"

// Client performs PriceCharting product lookups.
type Client interface {
	Search(ctx context.Context, query string) ([]ProductRef, error)
	Product(ctx context.Context, id string) (*Product, error)
}

// ProductRef is one search hit: enough to fetch details.
type ProductRef struct {
	ID          string `json:"id"`
	ProductName string `json:"product-name"`
	ConsoleName string `json:"console-name"`
}

// Product is the detail payload for one product. Prices are integer US
// cents; a nil price means that basis does not trade.
type Product struct {
	ID          string `json:"id"`
	ProductName string `json:"product-name"`
	ConsoleName string `json:"console-name"`
	LoosePrice  *int   `json:"loose-price"`
	CIBPrice    *int   `json:"cib-price"`
	NewPrice    *int   `json:"new-price"`
	UsedPrice   *int   `json:"used-price"`
	Genre       string `json:"genre"`
	ReleaseDate string `json:"release-date"`
	UPC         string `json:"upc"`
}

// URL returns the public product page.
func (p *Product) URL() string {
	return fmt.Sprintf("%s/game/%s", defaultBaseURL, p.ID)
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

// WithRateLimit caps outgoing requests per second. The detail fetch runs
// once per candidate, so bulk updates hammer the API without a limiter.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a PriceCharting API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Status   string       `json:"status"`
	Products []ProductRef `json:"products"`
}

func (c *httpClient) Search(ctx context.Context, query string) ([]ProductRef, error) {
	params := url.Values{}
	params.Set("t", c.apiKey)
	params.Set("q", query)

	var result searchResponse
	if err := c.get(ctx, "/api/products", params, &result); err != nil {
		return nil, err
	}
	return result.Products, nil
}

func (c *httpClient) Product(ctx context.Context, id string) (*Product, error) {
	params := url.Values{}
	params.Set("t", c.apiKey)
	params.Set("id", id)

	var result Product
	if err := c.get(ctx, "/api/product", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "pricecharting: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "pricecharting: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "pricecharting: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "pricecharting: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("pricecharting: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "pricecharting: unmarshal response")
	}

	return nil
}
