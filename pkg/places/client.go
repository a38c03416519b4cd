// Package places provides the two Google Places API calls the reviews
// source needs: find-place-from-text and place details.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client performs Google Places lookups.
type Client interface {
	// FindPlace resolves a free-text query to a place id. Returns "" when
	// the API has no candidate; that is not an error.
	FindPlace(ctx context.Context, input string) (string, error)

	// Reviews fetches the reviews for a place id.
	Reviews(ctx context.Context, placeID string) ([]Review, error)
}

// Review is one review excerpt.
type Review struct {
	Author string  `json:"author_name"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
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

// NewClient creates a Places client.
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

func (c *httpClient) FindPlace(ctx context.Context, input string) (string, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("inputtype", "textquery")
	params.Set("fields", "place_id")
	params.Set("key", c.apiKey)

	body, err := c.get(ctx, "/findplacefromtext/json", params)
	if err != nil {
		return "", err
	}

	var result struct {
		Status     string `json:"status"`
		Candidates []struct {
			PlaceID string `json:"place_id"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", eris.Wrap(err, "places: unmarshal find-place response")
	}

	if result.Status != "OK" || len(result.Candidates) == 0 {
		return "", nil
	}
	return result.Candidates[0].PlaceID, nil
}

func (c *httpClient) Reviews(ctx context.Context, placeID string) ([]Review, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "reviews")
	params.Set("key", c.apiKey)

	body, err := c.get(ctx, "/details/json", params)
	if err != nil {
		return nil, err
	}

	var result struct {
		Status string `json:"status"`
		Result *struct {
			Reviews []Review `json:"reviews"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal details response")
	}

	if result.Status != "OK" || result.Result == nil {
		return nil, eris.Errorf("places: no details for place %s (status %s)", placeID, result.Status)
	}
	return result.Result.Reviews, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
