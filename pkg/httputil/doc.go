// Package httputil provides HTTP utilities shared by the scraping and
// GitHub clients.
//
// # Overview
//
//   - [Cache]: file-based caching of fetched pages and API responses
//   - [Retry]: automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores responses in the filesystem (~/.cache/marketmap/) with a
// configurable TTL. Market-cap tables change slowly, so caching avoids
// hammering the source site during repeated runs and keeps reruns fast.
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	var page string
//	if ok, _ := cache.Get("countries", &page); !ok {
//	    page = fetchPage()
//	    cache.Set("countries", page)
//	}
//
// Namespace keys by source to avoid collisions ("scrape:", "github:").
//
// # Retry
//
// [Retry] re-attempts operations that fail with a [RetryableError]:
// network errors, 5xx responses, and 429 rate limits. Backoff doubles
// after each attempt.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetch()
//	})
//
// # Defaults
//
//   - Cache directory: ~/.cache/marketmap/
//   - Default TTL: 24 hours
//   - Max retries: 3, base backoff 1 second
//
// The cache can be cleared with `marketmap cache clear` or by deleting
// the cache directory.
package httputil
