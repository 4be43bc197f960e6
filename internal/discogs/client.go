package discogs

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

	"golang.org/x/time/rate"

	"byebye/internal/config"
	"byebye/internal/services"
)

const (
	maxPageBytes = 4 << 20
	limiterBurst = 5
)

// Options describes how to reach Discogs.
type Options struct {
	Token             string
	APIBaseURL        string
	WebBaseURL        string
	UserAgent         string
	AcceptLanguage    string
	RequestsPerMinute int
	Timeout           time.Duration
}

// OptionsFromConfig maps the [discogs] config section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		Token:             cfg.Discogs.Token,
		APIBaseURL:        cfg.Discogs.APIBaseURL,
		WebBaseURL:        cfg.Discogs.WebBaseURL,
		UserAgent:         cfg.Discogs.UserAgent,
		AcceptLanguage:    cfg.Discogs.AcceptLanguage,
		RequestsPerMinute: cfg.Discogs.RequestsPerMinute,
		Timeout:           cfg.DiscogsTimeout(),
	}
}

// Client talks to the Discogs API and marketplace pages.
type Client struct {
	token          string
	apiBaseURL     string
	webBaseURL     string
	userAgent      string
	acceptLanguage string
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter overrides the request limiter. A nil limiter disables pacing.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// New creates a Discogs client. A missing token is allowed; calls that need
// one fail with services.ErrMissingCredential.
func New(opts Options, options ...Option) (*Client, error) {
	apiBase := strings.TrimRight(strings.TrimSpace(opts.APIBaseURL), "/")
	if apiBase == "" {
		return nil, errors.New("discogs api base url required")
	}
	webBase := strings.TrimRight(strings.TrimSpace(opts.WebBaseURL), "/")
	if webBase == "" {
		return nil, errors.New("discogs web base url required")
	}
	client := &Client{
		token:          strings.TrimSpace(opts.Token),
		apiBaseURL:     apiBase,
		webBaseURL:     webBase,
		userAgent:      strings.TrimSpace(opts.UserAgent),
		acceptLanguage: strings.TrimSpace(opts.AcceptLanguage),
		// Zero timeout leaves the transport default in place.
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
	if opts.RequestsPerMinute > 0 {
		client.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), limiterBurst)
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// HasCredential reports whether an access token is configured.
func (c *Client) HasCredential() bool {
	return c != nil && c.token != ""
}

// HistoryURL is the marketplace sales-history page for a release.
func (c *Client) HistoryURL(releaseID int64) string {
	return c.webBaseURL + "/sell/history/" + itoa(releaseID)
}

// ReleaseURL is the public release page.
func (c *Client) ReleaseURL(releaseID int64) string {
	return c.webBaseURL + "/release/" + itoa(releaseID)
}

// Search queries /database/search with the non-empty params.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	if !c.HasCredential() {
		return nil, services.Wrap(services.ErrMissingCredential, "discogs", "search", "discogs token not configured", nil)
	}
	values := url.Values{}
	setIf := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}
	setIf("catno", params.CatalogNo)
	setIf("q", params.Query)
	setIf("artist", params.Artist)
	setIf("title", params.Title)
	if len(values) == 0 {
		return nil, services.Wrap(services.ErrInvalidQuery, "discogs", "search", "no search fields provided", nil)
	}
	// Masters and artists carry no catalog number or price data.
	values.Set("type", "release")

	var payload SearchResponse
	if err := c.getJSON(ctx, "discogs search", "/database/search", values, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Release fetches release metadata.
func (c *Client) Release(ctx context.Context, releaseID int64) (*Release, error) {
	var payload Release
	if err := c.getJSON(ctx, "discogs release", "/releases/"+itoa(releaseID), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ReleaseStats fetches have/want counts.
func (c *Client) ReleaseStats(ctx context.Context, releaseID int64) (*ReleaseStats, error) {
	var payload ReleaseStats
	if err := c.getJSON(ctx, "discogs release stats", "/releases/"+itoa(releaseID)+"/stats", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PriceSuggestions fetches suggested prices per condition. Discogs requires a
// token for this endpoint.
func (c *Client) PriceSuggestions(ctx context.Context, releaseID int64) (PriceSuggestions, error) {
	if !c.HasCredential() {
		return nil, services.Wrap(services.ErrMissingCredential, "discogs", "price suggestions", "discogs token not configured", nil)
	}
	payload := PriceSuggestions{}
	if err := c.getJSON(ctx, "discogs price suggestions", "/marketplace/price_suggestions/"+itoa(releaseID), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SalesHistoryPage returns the raw sales-history HTML.
func (c *Client) SalesHistoryPage(ctx context.Context, releaseID int64) (string, error) {
	return c.getPage(ctx, "discogs sales history page", c.HistoryURL(releaseID))
}

// ReleasePage returns the raw release page HTML.
func (c *Client) ReleasePage(ctx context.Context, releaseID int64) (string, error) {
	return c.getPage(ctx, "discogs release page", c.ReleaseURL(releaseID))
}

func (c *Client) getJSON(ctx context.Context, operation, path string, params url.Values, dest any) error {
	endpoint := c.apiBaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrInternal, "discogs", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.token)
	}

	resp, latency, err := c.do(req, operation)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return services.Wrap(services.ErrInternal, "discogs", operation, fmt.Sprintf("decode response (latency=%v)", latency), err)
	}
	return nil
}

func (c *Client) getPage(ctx context.Context, operation, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrInternal, "discogs", operation, "build request", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}

	resp, latency, err := c.do(req, operation)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "discogs", operation, fmt.Sprintf("read body (latency=%v)", latency), err)
	}
	return string(body), nil
}

// do waits on the limiter, sends req with no-cache directives, and converts
// non-2xx responses into UpstreamError. On success the caller owns resp.Body.
func (c *Client) do(req *http.Request, operation string) (*http.Response, time.Duration, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, 0, fmt.Errorf("%s: wait for rate limiter: %w", operation, err)
		}
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, services.Wrap(services.ErrUpstream, "discogs", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, latency, &services.UpstreamError{Operation: operation, StatusCode: resp.StatusCode}
	}
	return resp, latency, nil
}
