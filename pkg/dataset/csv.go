package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ayeeff/marketmap/pkg/errors"
)

// Column headers of the published country CSV.
const (
	colRank      = "Rank"
	colCountry   = "Country or region"
	colMarketCap = "Total MarketCap"
	colShare     = "% of Global Market Cap"
)

// WriteCSV encodes the dataset with the published column schema:
//
//	Rank,Country or region,Total MarketCap,% of Global Market Cap
func WriteCSV(d *Dataset, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colRank, colCountry, colMarketCap, colShare}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range d.Records {
		row := []string{
			strconv.Itoa(r.Rank),
			r.Country,
			FormatMarketCap(r.MarketCap),
			fmt.Sprintf("%.2f", r.Share),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", r.Rank, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes a dataset from the published column schema. Column lookup
// is tolerant: headers are matched case-insensitively and the country and
// market-cap columns are located by substring, so minor upstream header
// changes don't break imports (the source site renames columns occasionally).
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read csv")
	}
	if len(rows) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "csv has no data rows")
	}

	header := rows[0]
	countryIdx := findColumn(header, "country")
	capIdx := findColumn(header, "marketcap")
	if capIdx < 0 {
		capIdx = findColumn(header, "market cap")
	}
	shareIdx := findColumn(header, "%")
	rankIdx := findColumn(header, "rank")

	if countryIdx < 0 || capIdx < 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataset,
			"could not find required columns, available: %v", header)
	}

	d := &Dataset{}
	for i, row := range rows[1:] {
		rec := Record{}
		if rankIdx >= 0 && rankIdx < len(row) {
			rec.Rank, _ = strconv.Atoi(strings.TrimSpace(row[rankIdx]))
		}
		if rec.Rank == 0 {
			rec.Rank = i + 1
		}
		if countryIdx < len(row) {
			rec.Country = strings.TrimSpace(row[countryIdx])
		}
		if capIdx < len(row) {
			mc, err := ParseMarketCap(row[capIdx])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "row %d", i+1)
			}
			rec.MarketCap = mc
		}
		if shareIdx >= 0 && shareIdx < len(row) {
			share, err := ParsePercent(row[shareIdx])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "row %d", i+1)
			}
			rec.Share = share
		}
		d.Records = append(d.Records, rec)
	}
	return d, nil
}

// findColumn returns the index of the first header containing needle
// (case-insensitive), or -1.
func findColumn(header []string, needle string) int {
	needle = strings.ToLower(needle)
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), needle) {
			return i
		}
	}
	return -1
}
