// Package localbiz provides a client for the RapidAPI Local Business Data API.
package localbiz

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://local-business-data.p.rapidapi.com"
	rapidAPIHost   = "local-business-data.p.rapidapi.com"
)

// ErrQuotaExceeded signals an HTTP 429 from the API: the monthly quota is
// exhausted and further calls should be suppressed for the run.
var ErrQuotaExceeded = eris.New("localbiz: quota exceeded")

// Client performs Local Business Data lookups.
type Client interface {
	// Search runs a free-text query and returns the single best match,
	// or nil when the API has no candidates.
	Search(ctx context.Context, query string) (*Business, error)

	// Details fetches full details for a business id.
	Details(ctx context.Context, businessID string) (*Business, error)
}

// Business is one directory record.
type Business struct {
	BusinessID  string `json:"business_id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Hours       Hours  `json:"business_hours"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
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

// NewClient creates a Local Business Data client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string) (*Business, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "1")
	params.Set("language", "en")

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	// The search endpoint wraps its results in a data array.
	var envelope struct {
		Data []Business `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, eris.Wrap(err, "localbiz: unmarshal search response")
	}
	if len(envelope.Data) == 0 {
		return nil, nil
	}
	return &envelope.Data[0], nil
}

func (c *httpClient) Details(ctx context.Context, businessID string) (*Business, error) {
	params := url.Values{}
	params.Set("business_id", businessID)
	params.Set("extract_emails_and_contacts", "true")
	params.Set("extract_share_link", "false")
	params.Set("language", "en")

	body, err := c.get(ctx, "/business-details", params)
	if err != nil {
		return nil, err
	}

	// The details endpoint returns data either as a single object or as a
	// one-element array. Decode the tagged variants explicitly; anything
	// else is a malformed payload.
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, eris.Wrap(err, "localbiz: unmarshal details response")
	}
	if len(probe.Data) == 0 || string(probe.Data) == "null" {
		return nil, nil
	}

	switch probe.Data[0] {
	case '{':
		var b Business
		if err := json.Unmarshal(probe.Data, &b); err != nil {
			return nil, eris.Wrap(err, "localbiz: unmarshal details object")
		}
		return &b, nil
	case '[':
		var list []Business
		if err := json.Unmarshal(probe.Data, &list); err != nil {
			return nil, eris.Wrap(err, "localbiz: unmarshal details array")
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	default:
		return nil, eris.Errorf("localbiz: malformed details payload: %s", string(probe.Data))
	}
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "localbiz: create request")
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "localbiz: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "localbiz: read response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("localbiz: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
