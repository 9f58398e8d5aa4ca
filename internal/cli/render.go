package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayeeff/marketmap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // base output path; format extension is appended
	formats   []string
	empires   bool
	overlays  bool
	refresh   bool
	noCache   bool
	limit     int
	algorithm string
	width     int
	height    int
	topOffset int
	title     string
	imageURL  string
}

// renderCommand creates the render command for generating treemap artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the market-cap treemap",
		Long: `Run the scrape → layout → render pipeline and write the artifacts.

Formats: png (raster map), html (image-map snippet), svg, json (layout
export), csv (the underlying table). The output base path defaults to
"map" for the global map and "empires" for the empire map.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (format extension is appended)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), html, svg, json, csv (comma-separated)")
	cmd.Flags().BoolVar(&opts.empires, "empires", false, "render the empire map instead of the country map")
	cmd.Flags().BoolVar(&opts.overlays, "overlays", false, "composite flag/empire images into the cells")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass caches and recompute")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "number of countries to keep (0 uses config/default)")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "", "layout algorithm: slice (default), greedy")
	cmd.Flags().IntVar(&opts.width, "width", 0, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "canvas height in pixels")
	cmd.Flags().IntVar(&opts.topOffset, "top-offset", 0, "title band height in pixels")
	cmd.Flags().StringVar(&opts.title, "title", "", "map title")
	cmd.Flags().StringVar(&opts.imageURL, "image-url", "", "published PNG URL the HTML image map points at")

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, opts.noCache, opts.refresh)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering treemap...")
	spinner.Start()

	result, err := runner.Execute(ctx, c.pipelineOptions(opts))
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	cached := result.CacheInfo.ScrapeHit && result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	printSuccess("Rendered %s", strings.Join(opts.formats, ", "))
	printStats(result.Stats.Rows, len(result.Rects), cached)

	base := opts.output
	if base == "" {
		base = "map"
		if opts.empires {
			base = "empires"
		}
	}

	for _, format := range opts.formats {
		path, err := writeArtifact(base, format, result.Artifacts[format])
		if err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		printFile(path)
	}

	printNewline()
	printNextStep("Publish to GitHub", "marketmap publish")
	return nil
}

// pipelineOptions merges flags over config into pipeline options.
func (c *CLI) pipelineOptions(opts *renderOpts) pipeline.Options {
	p := pipeline.Options{
		Limit:             opts.limit,
		Empires:           opts.empires,
		Refresh:           opts.refresh,
		Algorithm:         opts.algorithm,
		Width:             opts.width,
		Height:            opts.height,
		TopOffset:         opts.topOffset,
		Formats:           opts.formats,
		Title:             opts.title,
		ImageURL:          opts.imageURL,
		Overlays:          opts.overlays,
		Logger:            c.Logger,
		EmpireDefinitions: c.Config.EmpireDefinitions(),
	}

	// Config fills anything the flags left at zero.
	if p.Limit == 0 {
		p.Limit = c.Config.Limit
	}
	if p.Algorithm == "" {
		p.Algorithm = c.Config.Algorithm
	}
	if p.Width == 0 {
		p.Width = c.Config.Canvas.Width
	}
	if p.Height == 0 {
		p.Height = c.Config.Canvas.Height
	}
	if p.TopOffset == 0 {
		p.TopOffset = c.Config.Canvas.TopOffset
	}
	return p
}
