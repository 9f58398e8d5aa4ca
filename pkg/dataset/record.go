package dataset

import (
	"sort"
	"strings"

	"github.com/ayeeff/marketmap/pkg/errors"
)

// Record is one row of a country market-capitalization table.
type Record struct {
	Rank      int     `json:"rank"`
	Country   string  `json:"country"`
	MarketCap float64 `json:"market_cap"` // USD
	Share     float64 `json:"share"`      // percent of the dataset total
}

// Dataset is an ordered collection of records. Order is significant: it is
// the order rectangles come out of the layout engine.
type Dataset struct {
	Records []Record `json:"records"`
}

// Total returns the summed market cap across all records.
// Summation is fixed left-to-right for reproducibility.
func (d *Dataset) Total() float64 {
	var total float64
	for _, r := range d.Records {
		total += r.MarketCap
	}
	return total
}

// ComputeShares recomputes every record's Share as a percentage of the
// dataset total. A zero total leaves all shares at zero.
func (d *Dataset) ComputeShares() {
	total := d.Total()
	if total <= 0 {
		for i := range d.Records {
			d.Records[i].Share = 0
		}
		return
	}
	for i := range d.Records {
		d.Records[i].Share = d.Records[i].MarketCap / total * 100
	}
}

// SortByMarketCap sorts records descending by market cap and reassigns ranks
// starting at 1. Visual treemap quality depends on descending order, so this
// is normally called before extracting weights.
func (d *Dataset) SortByMarketCap() {
	sort.SliceStable(d.Records, func(i, j int) bool {
		return d.Records[i].MarketCap > d.Records[j].MarketCap
	})
	for i := range d.Records {
		d.Records[i].Rank = i + 1
	}
}

// Top returns a dataset containing the first n records (or all of them if
// fewer exist). The receiver is not modified.
func (d *Dataset) Top(n int) *Dataset {
	if n > len(d.Records) {
		n = len(d.Records)
	}
	out := &Dataset{Records: make([]Record, n)}
	copy(out.Records, d.Records[:n])
	return out
}

// Weights extracts the positive shares, index-aligned with Labels. Records
// with a non-positive share are dropped (a zero row would be rejected by the
// layout engine), so Weights and Labels must be taken from the same filtered
// view: use Positive first when zeros may be present.
func (d *Dataset) Weights() []float64 {
	weights := make([]float64, len(d.Records))
	for i, r := range d.Records {
		weights[i] = r.Share
	}
	return weights
}

// Labels returns the country names, index-aligned with Weights.
func (d *Dataset) Labels() []string {
	labels := make([]string, len(d.Records))
	for i, r := range d.Records {
		labels[i] = r.Country
	}
	return labels
}

// Positive returns a dataset with only the records whose share is strictly
// positive, preserving order. The layout engine rejects non-positive weights,
// so callers filter here rather than asking geometry to coerce bad data.
func (d *Dataset) Positive() *Dataset {
	out := &Dataset{}
	for _, r := range d.Records {
		if r.Share > 0 {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Validate checks structural sanity of the dataset: at least one record,
// every country name valid, and no negative market caps.
func (d *Dataset) Validate() error {
	if len(d.Records) == 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset has no records")
	}
	for i, r := range d.Records {
		if err := errors.ValidateCountryName(r.Country); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "record %d", i)
		}
		if r.MarketCap < 0 {
			return errors.New(errors.ErrCodeInvalidDataset, "record %d (%s) has negative market cap", i, r.Country)
		}
	}
	return nil
}

// normalizeCountry lowercases and trims a country name for matching.
func normalizeCountry(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
