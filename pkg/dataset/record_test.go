package dataset

import (
	"math"
	"testing"

	"github.com/ayeeff/marketmap/pkg/errors"
)

func TestComputeShares(t *testing.T) {
	d := &Dataset{Records: []Record{
		{Country: "United States", MarketCap: 60},
		{Country: "China", MarketCap: 30},
		{Country: "Japan", MarketCap: 10},
	}}
	d.ComputeShares()

	want := []float64{60, 30, 10}
	for i, r := range d.Records {
		if math.Abs(r.Share-want[i]) > 1e-12 {
			t.Errorf("share[%d] = %v, want %v", i, r.Share, want[i])
		}
	}

	var sum float64
	for _, r := range d.Records {
		sum += r.Share
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("shares sum to %v, want 100", sum)
	}
}

func TestComputeSharesZeroTotal(t *testing.T) {
	d := &Dataset{Records: []Record{
		{Country: "Atlantis", MarketCap: 0, Share: 50},
	}}
	d.ComputeShares()
	if d.Records[0].Share != 0 {
		t.Errorf("share = %v, want 0 for zero total", d.Records[0].Share)
	}
}

func TestSortByMarketCap(t *testing.T) {
	d := &Dataset{Records: []Record{
		{Country: "Japan", MarketCap: 6.8e12},
		{Country: "United States", MarketCap: 68.89e12},
		{Country: "China", MarketCap: 15.2e12},
	}}
	d.SortByMarketCap()

	wantOrder := []string{"United States", "China", "Japan"}
	for i, r := range d.Records {
		if r.Country != wantOrder[i] {
			t.Errorf("record %d = %s, want %s", i, r.Country, wantOrder[i])
		}
		if r.Rank != i+1 {
			t.Errorf("rank of %s = %d, want %d", r.Country, r.Rank, i+1)
		}
	}
}

func TestSortByMarketCapStable(t *testing.T) {
	d := &Dataset{Records: []Record{
		{Country: "A", MarketCap: 10},
		{Country: "B", MarketCap: 10},
	}}
	d.SortByMarketCap()
	if d.Records[0].Country != "A" || d.Records[1].Country != "B" {
		t.Errorf("ties must keep input order, got %s then %s", d.Records[0].Country, d.Records[1].Country)
	}
}

func TestTop(t *testing.T) {
	d := &Dataset{Records: []Record{
		{Country: "A"}, {Country: "B"}, {Country: "C"},
	}}
	top := d.Top(2)
	if len(top.Records) != 2 || top.Records[1].Country != "B" {
		t.Errorf("Top(2) = %+v", top.Records)
	}
	if len(d.Top(10).Records) != 3 {
		t.Errorf("Top beyond length must return everything")
	}
	// Copy, not alias.
	top.Records[0].Country = "mutated"
	if d.Records[0].Country != "A" {
		t.Error("Top must not alias the receiver's records")
	}
}

func TestPositiveAndWeights(t *testing.T) {
	d := &Dataset{Records: []Record{
		{Country: "A", Share: 50},
		{Country: "B", Share: 0},
		{Country: "C", Share: 30},
		{Country: "D", Share: 20},
	}}
	p := d.Positive()
	weights := p.Weights()
	labels := p.Labels()

	if len(weights) != 3 || len(labels) != 3 {
		t.Fatalf("got %d weights, %d labels, want 3 each", len(weights), len(labels))
	}
	wantLabels := []string{"A", "C", "D"}
	wantWeights := []float64{50, 30, 20}
	for i := range weights {
		if labels[i] != wantLabels[i] || weights[i] != wantWeights[i] {
			t.Errorf("index %d: %s/%v, want %s/%v", i, labels[i], weights[i], wantLabels[i], wantWeights[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		dataset *Dataset
		wantErr bool
	}{
		{
			name:    "valid",
			dataset: &Dataset{Records: []Record{{Country: "Japan", MarketCap: 6.8e12}}},
		},
		{
			name:    "empty",
			dataset: &Dataset{},
			wantErr: true,
		},
		{
			name:    "blank country",
			dataset: &Dataset{Records: []Record{{Country: "  ", MarketCap: 1}}},
			wantErr: true,
		},
		{
			name:    "negative market cap",
			dataset: &Dataset{Records: []Record{{Country: "Japan", MarketCap: -1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dataset.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errors.GetCode(err) != errors.ErrCodeInvalidDataset {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidDataset)
			}
		})
	}
}
