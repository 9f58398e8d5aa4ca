package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ayeeff/marketmap/pkg/errors"
)

// extractTable returns the cells of the first <table> in the document as
// rows of trimmed strings. The header row (th cells) comes first. Rows with
// no cells are skipped.
func extractTable(html string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse html")
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no table found in page")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})

	if len(rows) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "table has no data rows")
	}
	return rows, nil
}

// findColumn returns the index of the first header cell containing want
// (case-insensitive), or -1.
func findColumn(header []string, want string) int {
	want = strings.ToLower(want)
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), want) {
			return i
		}
	}
	return -1
}
