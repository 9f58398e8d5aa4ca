package scrape

import (
	"context"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/httputil"
	"github.com/ayeeff/marketmap/pkg/observability"
)

// DefaultBaseURL is the production source site.
const DefaultBaseURL = "https://www.marketcapwatch.com"

// CountriesPath is the page listing total market cap per country.
const CountriesPath = "/all-countries/"

// userAgent identifies the scraper. A plain Go default agent gets blocked
// by the site's bot filter.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures a Client.
type Options struct {
	// BaseURL overrides the source site, mainly for tests.
	BaseURL string

	// CacheDir is the HTTP cache directory. Empty selects the default.
	CacheDir string

	// CacheTTL is how long fetched pages stay fresh. Zero means 24 hours.
	CacheTTL time.Duration

	// Refresh bypasses the cache and always refetches.
	Refresh bool

	// Timeout is the per-request timeout. Zero means 30 seconds.
	Timeout time.Duration
}

// Client fetches and parses pages from the source site.
type Client struct {
	http    *resty.Client
	cache   *httputil.Cache
	baseURL string
	refresh bool
}

// NewClient creates a Client. The only possible error is a cache directory
// that cannot be created.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	cache, err := httputil.NewCache(opts.CacheDir, opts.CacheTTL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create scrape cache")
	}

	http := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("User-Agent", userAgent).
		SetTimeout(opts.Timeout)

	return &Client{
		http:    http,
		cache:   cache.Namespace("scrape:"),
		baseURL: opts.BaseURL,
		refresh: opts.Refresh,
	}, nil
}

// BaseURL returns the source site this client fetches from.
func (c *Client) BaseURL() string { return c.baseURL }

// fetchPage returns the HTML body of path, from cache when fresh.
// Transient failures (network errors, 5xx, 429) are retried with backoff.
func (c *Client) fetchPage(ctx context.Context, path string) (string, error) {
	if !c.refresh {
		var page string
		if ok, _ := c.cache.Get(path, &page); ok {
			observability.Cache().OnCacheHit(ctx, "http")
			return page, nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	host := c.baseURL
	if u, err := url.Parse(c.baseURL); err == nil {
		host = u.Host
	}

	var page string
	err := httputil.RetryWithBackoff(ctx, func() error {
		observability.HTTP().OnRequest(ctx, "GET", host, path)
		start := time.Now()

		resp, err := c.http.R().SetContext(ctx).Get(path)
		if err != nil {
			observability.HTTP().OnError(ctx, "GET", host, path, err)
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", path)}
		}
		observability.HTTP().OnResponse(ctx, "GET", host, path, resp.StatusCode(), time.Since(start))

		if err := checkStatus(resp.StatusCode(), path); err != nil {
			return err
		}
		page = string(resp.Body())
		return nil
	})
	if err != nil {
		return "", err
	}

	_ = c.cache.Set(path, page)
	observability.Cache().OnCacheSet(ctx, "http", len(page))
	return page, nil
}

func checkStatus(code int, path string) error {
	switch {
	case code == 200:
		return nil
	case code == 404:
		return errors.New(errors.ErrCodeNotFound, "page %s not found", path)
	case code == 429:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeRateLimited, "rate limited fetching %s", path)}
	case code >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork, "status %d fetching %s", code, path)}
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d fetching %s", code, path)
	}
}
