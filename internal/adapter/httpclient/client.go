// Package httpclient talks to a remote listing API.
// Client satisfies search.Source and search.TelemetrySink so a Browser can run against it.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// FindByCountry fetches every searchable listing of country.
func (c *Client) FindByCountry(ctx context.Context, country string) ([]*domain.Listing, error) {
	endpoint := c.baseURL + "/api/search/listing/all?" + url.Values{"country": {country}}.Encode()
	resp, err := c.do(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var listings []*domain.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return listings, nil
}

func (c *Client) IncrementImpression(ctx context.Context, id string) error {
	return c.post(ctx, "/api/listing/"+url.PathEscape(id)+"/impression")
}

func (c *Client) IncrementClick(ctx context.Context, id string) error {
	return c.post(ctx, "/api/listing/"+url.PathEscape(id)+"/click")
}

func (c *Client) post(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+path)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) do(ctx context.Context, method, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	var base error
	switch resp.StatusCode {
	case http.StatusNotFound:
		base = domain.ErrListingNotFound
	case http.StatusBadRequest:
		base = domain.ErrInvalidListingData
	default:
		base = ErrUnexpectedStatus
	}
	if body.Message != "" {
		return fmt.Errorf("%w: %d %s", base, resp.StatusCode, body.Message)
	}
	return fmt.Errorf("%w: %d", base, resp.StatusCode)
}
