package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ayeeff/marketmap/pkg/dataset"
	"github.com/ayeeff/marketmap/pkg/pipeline"
	"github.com/ayeeff/marketmap/pkg/scrape"
)

// companiesCommand creates the companies command. Without an argument it
// opens an interactive country picker.
func (c *CLI) companiesCommand() *cobra.Command {
	var (
		top     int
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "companies [country]",
		Short: "Show the largest companies of a country",
		Long: `Fetch a country's largest-companies table from the source site.

When no country is given, an interactive picker over the scraped country
list is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			scraper, err := c.newScraper(refresh)
			if err != nil {
				return err
			}

			country := ""
			if len(args) == 1 {
				country = args[0]
			} else {
				runner, err := c.newRunner(ctx, false, refresh)
				if err != nil {
					return err
				}
				defer runner.Close()

				ds, err := runner.Scrape(ctx, pipeline.Options{Logger: c.Logger})
				if err != nil {
					return err
				}
				country, err = pickCountry(ds)
				if err != nil {
					return err
				}
				if country == "" {
					return nil // picker dismissed
				}
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching companies for %s...", country))
			spinner.Start()

			companies, err := scraper.TopCompanies(ctx, country, top)
			if err != nil {
				spinner.StopWithError("Fetch failed")
				return err
			}
			spinner.Stop()

			printSuccess("Top %d companies in %s", len(companies), country)
			printDetail("Source: %s/%s/", scraper.BaseURL(), scrape.CountrySlug(country))
			printNewline()
			printCompanyTable(companies)
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 10, "number of companies to show")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the HTTP cache")

	return cmd
}

// printCompanyTable renders the companies as a bordered terminal table.
func printCompanyTable(companies []scrape.Company) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(companies))
	for _, co := range companies {
		rows = append(rows, []string{
			fmt.Sprintf("%d", co.Rank),
			co.Name,
			dataset.FormatMarketCap(co.MarketCap),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Rank", "Company", "Market Cap").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return StyleNumber
			}
			return StyleValue
		})

	fmt.Println(t.Render())
}
