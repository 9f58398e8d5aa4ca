package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ayeeff/marketmap/pkg/dataset"
	"github.com/ayeeff/marketmap/pkg/pipeline"
)

// scrapeCommand creates the scrape command.
func (c *CLI) scrapeCommand() *cobra.Command {
	var (
		limit   int
		refresh bool
		noCache bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the country market-cap table",
		Long: `Fetch total market capitalization by country from the source site.

The table is sorted by market cap, trimmed to the top N countries, and
printed to the terminal. With --output the table is written as CSV using
the published column schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, noCache, refresh)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Fetching market caps...")
			spinner.Start()

			ds, hit, err := runner.ScrapeWithCacheInfo(ctx, pipeline.Options{
				Limit:   limit,
				Refresh: refresh,
				Logger:  c.Logger,
			})
			if err != nil {
				spinner.StopWithError("Scrape failed")
				return err
			}
			spinner.Stop()

			printSuccess("Scraped %d countries", len(ds.Records))
			printStats(len(ds.Records), 0, hit)
			printNewline()
			printCountryTable(ds)

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := dataset.WriteCSV(ds, f); err != nil {
					return err
				}
				printNewline()
				printFile(output)
			}

			printNewline()
			printNextStep("Render the treemap", "marketmap render")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", pipeline.DefaultLimit, "number of countries to keep")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and refetch")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the table as CSV to this path")

	return cmd
}

// printCountryTable renders the dataset as a bordered terminal table.
func printCountryTable(ds *dataset.Dataset) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(ds.Records))
	for _, r := range ds.Records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Rank),
			r.Country,
			dataset.FormatMarketCap(r.MarketCap),
			fmt.Sprintf("%.2f%%", r.Share),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Rank", "Country", "Market Cap", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 || col == 3 {
				return StyleNumber
			}
			return StyleValue
		})

	fmt.Println(t.Render())
}
