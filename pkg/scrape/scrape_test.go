package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayeeff/marketmap/pkg/errors"
)

const countriesHTML = `<html><body>
<h1>Market capitalization by country</h1>
<table>
<tr><th>Rank</th><th>Country or region</th><th>Total MarketCap</th><th>% of Global Market Cap</th></tr>
<tr><td>1</td><td>United States</td><td>$68.89 T</td><td>46.50%</td></tr>
<tr><td>2</td><td>China</td><td>$15.20 T</td><td>10.26%</td></tr>
<tr><td>3</td><td>Japan</td><td>$6.80 T</td><td>4.59%</td></tr>
</table>
</body></html>`

const companiesHTML = `<html><body>
<table>
<tr><th>Rank</th><th>Company</th><th>Market Cap</th></tr>
<tr><td>1</td><td>Apple</td><td>$3.45 T</td></tr>
<tr><td>2</td><td>Microsoft</td><td>$3.10 T</td></tr>
<tr><td>3</td><td>NVIDIA</td><td>$2.90 T</td></tr>
</table>
</body></html>`

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL, CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestCountries(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CountriesPath {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(countriesHTML))
	}))

	ds, err := c.Countries(context.Background())
	if err != nil {
		t.Fatalf("Countries() error = %v", err)
	}
	if len(ds.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(ds.Records))
	}

	first := ds.Records[0]
	if first.Country != "United States" || first.Rank != 1 {
		t.Errorf("first record = %+v", first)
	}
	if first.MarketCap != 68.89e12 {
		t.Errorf("market cap = %v, want 6.889e13", first.MarketCap)
	}
	if first.Share <= 0 {
		t.Error("shares must be recomputed after parsing")
	}

	var sum float64
	for _, r := range ds.Records {
		sum += r.Share
	}
	if sum < 99.99 || sum > 100.01 {
		t.Errorf("shares sum to %v, want 100", sum)
	}
}

func TestCountriesCaching(t *testing.T) {
	hits := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(countriesHTML))
	}))

	ctx := context.Background()
	if _, err := c.Countries(ctx); err != nil {
		t.Fatalf("first Countries() error = %v", err)
	}
	if _, err := c.Countries(ctx); err != nil {
		t.Fatalf("second Countries() error = %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1 (second call cached)", hits)
	}
}

func TestCountriesRetriesServerErrors(t *testing.T) {
	attempts := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(countriesHTML))
	}))

	if _, err := c.Countries(context.Background()); err != nil {
		t.Fatalf("Countries() error = %v, want retry to succeed", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestCountriesNotFound(t *testing.T) {
	c := testClient(t, http.NotFoundHandler())

	_, err := c.Countries(context.Background())
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeNotFound)
	}
}

func TestCountriesMissingTable(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>no table here</p></body></html>"))
	}))

	_, err := c.Countries(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestTopCompanies(t *testing.T) {
	var requestedPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		_, _ = w.Write([]byte(companiesHTML))
	}))

	companies, err := c.TopCompanies(context.Background(), "United States", 2)
	if err != nil {
		t.Fatalf("TopCompanies() error = %v", err)
	}
	if requestedPath != "/united-states/" {
		t.Errorf("requested %s, want /united-states/", requestedPath)
	}
	if len(companies) != 2 {
		t.Fatalf("got %d companies, want 2", len(companies))
	}
	if companies[0].Name != "Apple" || companies[0].MarketCap != 3.45e12 {
		t.Errorf("first company = %+v", companies[0])
	}
}

func TestCountrySlug(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"United States", "united-states"},
		{"Hong Kong", "hong-kong"},
		{"Japan", "japan"},
		{"Trinidad & Tobago", "trinidad-and-tobago"},
		{"Côte d'Ivoire", "cte-divoire"},
	}
	for _, tt := range tests {
		if got := CountrySlug(tt.country); got != tt.want {
			t.Errorf("CountrySlug(%q) = %q, want %q", tt.country, got, tt.want)
		}
	}
}

func TestExtractTable(t *testing.T) {
	rows, err := extractTable(countriesHTML)
	if err != nil {
		t.Fatalf("extractTable() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4 (header + 3)", len(rows))
	}
	if rows[0][1] != "Country or region" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "United States" || rows[1][2] != "$68.89 T" {
		t.Errorf("first data row = %v", rows[1])
	}
}

func TestFindColumn(t *testing.T) {
	header := []string{"Rank", "Country or region", "Total MarketCap"}
	if got := findColumn(header, "country"); got != 1 {
		t.Errorf("findColumn(country) = %d, want 1", got)
	}
	if got := findColumn(header, "market"); got != 2 {
		t.Errorf("findColumn(market) = %d, want 2", got)
	}
	if got := findColumn(header, "missing"); got != -1 {
		t.Errorf("findColumn(missing) = %d, want -1", got)
	}
}
