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

// empiresCommand creates the empires command.
func (c *CLI) empiresCommand() *cobra.Command {
	var (
		refresh bool
		noCache bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "empires",
		Short: "Aggregate country market caps into empire totals",
		Long: `Fold the scraped country table into empire blocs.

The built-in definitions group the British Commonwealth, the United States,
and China with Hong Kong and Taiwan. Empire lists can be overridden in the
config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, noCache, refresh)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Aggregating empires...")
			spinner.Start()

			// The full country list, not the top-N cut: empire membership
			// reaches well past the biggest markets.
			ds, err := runner.Scrape(ctx, pipeline.Options{
				Limit:   1000,
				Refresh: refresh,
				Logger:  c.Logger,
			})
			if err != nil {
				spinner.StopWithError("Scrape failed")
				return err
			}
			spinner.Stop()

			totals := dataset.AggregateEmpires(ds, c.Config.EmpireDefinitions())

			printSuccess("Aggregated %d countries into %d empires", len(ds.Records), len(totals))
			printNewline()
			printEmpireTable(totals)

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := dataset.WriteEmpireCSV(totals, f); err != nil {
					return err
				}
				printNewline()
				printFile(output)
			}

			printNewline()
			printNextStep("Render the empire treemap", "marketmap render --empires")
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and refetch")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the empire table as CSV to this path")

	return cmd
}

// printEmpireTable renders the empire totals as a bordered terminal table.
func printEmpireTable(totals []dataset.EmpireTotal) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.Rank),
			t.Name,
			t.Description,
			dataset.FormatMarketCap(t.MarketCap),
			fmt.Sprintf("%d", t.Countries),
			fmt.Sprintf("%.2f%%", t.ShareOfGlobal),
			fmt.Sprintf("%.2f%%", t.ShareOfTotal),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Rank", "Empire", "Description", "Market Cap", "Countries", "% Global", "% Empires").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col >= 3 {
				return StyleNumber
			}
			return StyleValue
		})

	fmt.Println(t.Render())
}
