package dataset

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func testCountries() *Dataset {
	return &Dataset{Records: []Record{
		{Country: "United States", MarketCap: 68.89e12},
		{Country: "China", MarketCap: 15.20e12},
		{Country: "Hong Kong", MarketCap: 5.50e12},
		{Country: "Taiwan", MarketCap: 3.45e12},
		{Country: "United Kingdom", MarketCap: 3.80e12},
		{Country: "Canada", MarketCap: 3.10e12},
		{Country: "Australia", MarketCap: 1.90e12},
		{Country: "Japan", MarketCap: 6.80e12},  // no empire
		{Country: "Germany", MarketCap: 2.50e12}, // no empire
	}}
}

func TestAggregateEmpires(t *testing.T) {
	totals := AggregateEmpires(testCountries(), DefaultEmpires())
	if len(totals) != 3 {
		t.Fatalf("len = %d, want 3", len(totals))
	}

	commonwealth := totals[0]
	if commonwealth.Countries != 3 {
		t.Errorf("commonwealth countries = %d, want 3", commonwealth.Countries)
	}
	if want := 3.80e12 + 3.10e12 + 1.90e12; commonwealth.MarketCap != want {
		t.Errorf("commonwealth total = %v, want %v", commonwealth.MarketCap, want)
	}

	usa := totals[1]
	if usa.MarketCap != 68.89e12 || usa.Countries != 1 {
		t.Errorf("usa = %+v", usa)
	}

	china := totals[2]
	if china.Countries != 3 {
		t.Errorf("china bloc countries = %d, want 3", china.Countries)
	}
	if want := 15.20e12 + 5.50e12 + 3.45e12; china.MarketCap != want {
		t.Errorf("china bloc total = %v, want %v", china.MarketCap, want)
	}

	// Shares of the combined empire total must sum to 100.
	var sum float64
	for _, tot := range totals {
		sum += tot.ShareOfTotal
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("sum of empire shares = %v, want 100", sum)
	}
}

func TestAggregateEmpiresSubstringMatch(t *testing.T) {
	d := &Dataset{Records: []Record{
		{Country: "United States of America", MarketCap: 10},
		{Country: "Mainland China", MarketCap: 5},
	}}
	totals := AggregateEmpires(d, DefaultEmpires())
	if totals[1].MarketCap != 10 {
		t.Errorf("usa total = %v, want 10", totals[1].MarketCap)
	}
	if totals[2].MarketCap != 5 {
		t.Errorf("china total = %v, want 5", totals[2].MarketCap)
	}
}

func TestEmpireWeights(t *testing.T) {
	totals := AggregateEmpires(testCountries(), DefaultEmpires())
	weights, kept := EmpireWeights(totals)
	if len(weights) != 3 || len(kept) != 3 {
		t.Fatalf("len weights=%d kept=%d, want 3", len(weights), len(kept))
	}
	for i := range weights {
		if weights[i] != kept[i].ShareOfTotal {
			t.Errorf("weights[%d] = %v misaligned with kept %v", i, weights[i], kept[i].ShareOfTotal)
		}
	}

	// An empire matching nothing is skipped from both slices.
	empty := append(DefaultEmpires(), Empire{Rank: 4, Name: "Empire 4.0", Members: []string{"Atlantis"}})
	weights, kept = EmpireWeights(AggregateEmpires(testCountries(), empty))
	if len(weights) != 3 {
		t.Errorf("len = %d, want 3 (empty empire skipped)", len(weights))
	}
	for _, k := range kept {
		if k.Name == "Empire 4.0" {
			t.Error("empty empire kept")
		}
	}
}

func TestWriteEmpireCSV(t *testing.T) {
	totals := AggregateEmpires(testCountries(), DefaultEmpires())

	var buf bytes.Buffer
	if err := WriteEmpireCSV(totals, &buf); err != nil {
		t.Fatalf("WriteEmpireCSV() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Rank,Empire,Description,Total Market Cap,Countries,% of Global,% of Empire Total") {
		t.Errorf("unexpected header in %q", out)
	}
	if !strings.Contains(out, "Empire 2.0: Oil & Silicon") {
		t.Errorf("missing empire row in %q", out)
	}
	if !strings.Contains(out, "%") {
		t.Errorf("percent columns must carry %% suffix: %q", out)
	}
}

func TestEmpireTooltip(t *testing.T) {
	tot := EmpireTotal{
		Rank: 2, Name: "Empire 2.0: Oil & Silicon", Description: "United States",
		MarketCap: 68.89e12, Countries: 1, ShareOfGlobal: 46.50, ShareOfTotal: 65.42,
	}
	tip := tot.Tooltip()
	for _, want := range []string{"Empire 2.0", "$68.89 T", "1 countries", "46.50% of global"} {
		if !strings.Contains(tip, want) {
			t.Errorf("Tooltip() = %q, missing %q", tip, want)
		}
	}
}
