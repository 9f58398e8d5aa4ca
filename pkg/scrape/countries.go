package scrape

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ayeeff/marketmap/pkg/dataset"
	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/observability"
)

// Countries fetches the all-countries page and returns it as a dataset,
// in page order, with shares recomputed from the parsed market caps.
func (c *Client) Countries(ctx context.Context) (*dataset.Dataset, error) {
	observability.Pipeline().OnScrapeStart(ctx, c.baseURL)
	start := time.Now()

	ds, err := c.countries(ctx)
	rows := 0
	if ds != nil {
		rows = len(ds.Records)
	}
	observability.Pipeline().OnScrapeComplete(ctx, c.baseURL, rows, time.Since(start), err)
	return ds, err
}

func (c *Client) countries(ctx context.Context) (*dataset.Dataset, error) {
	page, err := c.fetchPage(ctx, CountriesPath)
	if err != nil {
		return nil, err
	}

	rows, err := extractTable(page)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "countries page")
	}

	header := rows[0]
	countryCol := findColumn(header, "country")
	capCol := findColumn(header, "market")
	if countryCol < 0 || capCol < 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"countries table missing expected columns (got %s)", strings.Join(header, ", "))
	}
	rankCol := findColumn(header, "rank")

	ds := &dataset.Dataset{}
	for i, row := range rows[1:] {
		if len(row) <= countryCol || len(row) <= capCol {
			continue
		}
		mcap, err := dataset.ParseMarketCap(row[capCol])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "row %d (%s)", i+1, row[countryCol])
		}

		rank := i + 1
		if rankCol >= 0 && len(row) > rankCol {
			if n, err := strconv.Atoi(strings.ReplaceAll(row[rankCol], ",", "")); err == nil {
				rank = n
			}
		}

		ds.Records = append(ds.Records, dataset.Record{
			Rank:      rank,
			Country:   row[countryCol],
			MarketCap: mcap,
		})
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	ds.ComputeShares()
	return ds, nil
}
