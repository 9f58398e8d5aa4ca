package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ayeeff/marketmap/pkg/errors"
)

const (
	trillion = 1_000_000_000_000
	billion  = 1_000_000_000
	million  = 1_000_000
)

// ParseMarketCap converts a market-cap display string to a numeric USD value.
// Accepted forms include "$68.89 T", "3.2B", "$450 M", "1,234,567" and plain
// numbers. Empty strings and "-" parse to zero, matching how the source
// tables mark missing data.
func ParseMarketCap(s string) (float64, error) {
	v := strings.TrimSpace(s)
	if v == "" || v == "-" {
		return 0, nil
	}

	v = strings.ReplaceAll(v, "$", "")
	v = strings.ReplaceAll(v, ",", "")
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ToUpper(v)

	multiplier := 1.0
	switch {
	case strings.Contains(v, "T"):
		multiplier = trillion
		v = strings.ReplaceAll(v, "T", "")
	case strings.Contains(v, "B"):
		multiplier = billion
		v = strings.ReplaceAll(v, "B", "")
	case strings.Contains(v, "M"):
		multiplier = million
		v = strings.ReplaceAll(v, "M", "")
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidDataset, err, "unparsable market cap %q", s)
	}
	return n * multiplier, nil
}

// FormatMarketCap renders a numeric USD value in the display form used by the
// published CSVs: "$12.26 T", "$450.00 B", "$3.10 M" or "$123.45".
func FormatMarketCap(v float64) string {
	switch {
	case v >= trillion:
		return fmt.Sprintf("$%.2f T", v/trillion)
	case v >= billion:
		return fmt.Sprintf("$%.2f B", v/billion)
	case v >= million:
		return fmt.Sprintf("$%.2f M", v/million)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// ParsePercent converts a percentage display string ("46.50%" or "46.50") to
// its numeric value.
func ParsePercent(s string) (float64, error) {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if v == "" || v == "-" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidDataset, err, "unparsable percentage %q", s)
	}
	return n, nil
}
