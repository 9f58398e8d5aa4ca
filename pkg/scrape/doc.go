// Package scrape fetches market-capitalization tables from the source site.
//
// # Overview
//
// The site publishes one page listing total market cap per country and one
// page per country listing its largest companies. [Client] fetches both:
//
//   - [Client.Countries]: the all-countries table as a dataset
//   - [Client.TopCompanies]: a country's largest companies
//
// Pages are plain HTML tables, extracted with goquery. Fetches go through
// the shared HTTP cache and retry logic in pkg/httputil, so repeated runs
// within the cache TTL never hit the network.
//
// # Usage
//
//	client, err := scrape.NewClient(scrape.Options{})
//	ds, err := client.Countries(ctx)
//
// Country pages are addressed by slug: "United States" becomes
// "united-states". See [CountrySlug].
package scrape
