package scrape

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/ayeeff/marketmap/pkg/dataset"
	"github.com/ayeeff/marketmap/pkg/errors"
)

// Company is one row of a country's largest-companies table.
type Company struct {
	Rank      int     `json:"rank"`
	Name      string  `json:"name"`
	MarketCap float64 `json:"market_cap"` // USD
}

var slugStrip = regexp.MustCompile(`[^a-z0-9\-]`)

// CountrySlug converts a country name to its page slug:
// lowercase, spaces to hyphens, "&" to "and", everything else
// outside [a-z0-9-] stripped.
func CountrySlug(country string) string {
	slug := strings.ToLower(country)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "&", "and")
	return slugStrip.ReplaceAllString(slug, "")
}

// TopCompanies fetches a country's page and returns its first n companies.
// The first table on the page is the companies list with columns
// rank, name, market cap.
func (c *Client) TopCompanies(ctx context.Context, country string, n int) ([]Company, error) {
	if err := errors.ValidateCountryName(country); err != nil {
		return nil, err
	}

	page, err := c.fetchPage(ctx, "/"+CountrySlug(country)+"/")
	if err != nil {
		return nil, err
	}

	rows, err := extractTable(page)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "companies page for %s", country)
	}

	var companies []Company
	for i, row := range rows[1:] {
		if n > 0 && len(companies) >= n {
			break
		}
		if len(row) < 3 {
			continue
		}

		rank := i + 1
		if parsed, err := strconv.Atoi(strings.ReplaceAll(row[0], ",", "")); err == nil {
			rank = parsed
		}
		mcap, err := dataset.ParseMarketCap(row[2])
		if err != nil {
			continue
		}

		companies = append(companies, Company{
			Rank:      rank,
			Name:      row[1],
			MarketCap: mcap,
		})
	}

	if len(companies) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no company rows extracted for %s", country)
	}
	return companies, nil
}
