package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Empire groups countries into one market-cap bloc.
type Empire struct {
	Rank        int      `json:"rank" toml:"rank"`
	Name        string   `json:"name" toml:"name"`
	Description string   `json:"description" toml:"description"`
	Members     []string `json:"members" toml:"members"`
	// Substrings matches any country whose normalized name contains one of
	// these fragments ("united states" catches "United States of America").
	Substrings []string `json:"substrings,omitempty" toml:"substrings"`
	ImageURL   string   `json:"image_url,omitempty" toml:"image_url"`
}

// EmpireTotal is one aggregated row of the empire table.
type EmpireTotal struct {
	Rank          int     `json:"rank"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	MarketCap     float64 `json:"market_cap"`
	Countries     int     `json:"countries"`      // member countries found in the dataset
	ShareOfGlobal float64 `json:"share_global"`   // percent of the whole dataset
	ShareOfTotal  float64 `json:"share_of_total"` // percent of the combined empire total
}

// Tooltip renders the hover text used by the image-map and SVG sinks.
func (t EmpireTotal) Tooltip() string {
	return fmt.Sprintf("%s\n%s\n%s\n%d countries\n%.2f%% of global",
		t.Name, t.Description, FormatMarketCap(t.MarketCap), t.Countries, t.ShareOfGlobal)
}

// DefaultEmpires returns the built-in empire definitions. They can be
// overridden through configuration.
func DefaultEmpires() []Empire {
	return []Empire{
		{
			Rank:        1,
			Name:        "Empire 1.0: Steam & Colonies",
			Description: "British Commonwealth",
			Members: []string{
				"United Kingdom", "UK", "Great Britain",
				"Canada", "Australia", "India", "Singapore",
				"New Zealand", "South Africa", "Malaysia",
				"Pakistan", "Bangladesh", "Sri Lanka",
				"Nigeria", "Kenya", "Ghana", "Jamaica",
				"Uganda", "Tanzania", "Zambia", "Malawi",
				"Cyprus", "Malta", "Mauritius", "Botswana",
				"Namibia", "Zimbabwe", "Barbados",
				"Trinidad and Tobago", "Fiji", "Papua New Guinea",
			},
			ImageURL: "https://raw.githubusercontent.com/ayeeff/marketcap/main/img/emp1.png",
		},
		{
			Rank:        2,
			Name:        "Empire 2.0: Oil & Silicon",
			Description: "United States",
			Substrings:  []string{"united states"},
			ImageURL:    "https://raw.githubusercontent.com/ayeeff/marketcap/main/img/emp2.png",
		},
		{
			Rank:        3,
			Name:        "Empire 3.0: Rare Earths, Renewables & Robotics",
			Description: "China + Hong Kong + Taiwan",
			Substrings:  []string{"china", "hong kong", "taiwan"},
			ImageURL:    "https://raw.githubusercontent.com/ayeeff/marketcap/main/img/emp3.png",
		},
	}
}

// matches reports whether a normalized country name belongs to the empire.
func (e Empire) matches(normalized string) bool {
	for _, m := range e.Members {
		if normalizeCountry(m) == normalized {
			return true
		}
	}
	for _, s := range e.Substrings {
		if strings.Contains(normalized, s) {
			return true
		}
	}
	return false
}

// AggregateEmpires folds the country dataset into per-empire totals.
// ShareOfGlobal is relative to the full dataset total; ShareOfTotal is
// relative to the combined total of the matched empires only. Output order
// follows the empire definitions.
func AggregateEmpires(d *Dataset, empires []Empire) []EmpireTotal {
	totals := make([]EmpireTotal, len(empires))
	for i, e := range empires {
		totals[i] = EmpireTotal{Rank: e.Rank, Name: e.Name, Description: e.Description}
	}

	for _, r := range d.Records {
		normalized := normalizeCountry(r.Country)
		for i, e := range empires {
			if e.matches(normalized) {
				totals[i].MarketCap += r.MarketCap
				totals[i].Countries++
				break
			}
		}
	}

	global := d.Total()
	var grand float64
	for _, t := range totals {
		grand += t.MarketCap
	}
	for i := range totals {
		if global > 0 {
			totals[i].ShareOfGlobal = totals[i].MarketCap / global * 100
		}
		if grand > 0 {
			totals[i].ShareOfTotal = totals[i].MarketCap / grand * 100
		}
	}
	return totals
}

// WriteEmpireCSV encodes empire totals with the published schema:
//
//	Rank,Empire,Description,Total Market Cap,Countries,% of Global,% of Empire Total
func WriteEmpireCSV(totals []EmpireTotal, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"Rank", "Empire", "Description", "Total Market Cap", "Countries", "% of Global", "% of Empire Total"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range totals {
		row := []string{
			strconv.Itoa(t.Rank),
			t.Name,
			t.Description,
			FormatMarketCap(t.MarketCap),
			strconv.Itoa(t.Countries),
			fmt.Sprintf("%.2f%%", t.ShareOfGlobal),
			fmt.Sprintf("%.2f%%", t.ShareOfTotal),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write empire %d: %w", t.Rank, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EmpireWeights extracts the share-of-total weights, index-aligned with the
// totals slice, skipping empires that matched nothing. It returns the kept
// totals alongside so labels and tooltips stay zipped with the weights.
func EmpireWeights(totals []EmpireTotal) ([]float64, []EmpireTotal) {
	weights := make([]float64, 0, len(totals))
	kept := make([]EmpireTotal, 0, len(totals))
	for _, t := range totals {
		if t.ShareOfTotal > 0 {
			weights = append(weights, t.ShareOfTotal)
			kept = append(kept, t)
		}
	}
	return weights, kept
}
