// Package cli implements the marketmap command-line interface.
//
// This package provides commands for scraping country market-cap data,
// aggregating it into empires, rendering treemap artifacts, publishing them
// to a GitHub data repository, and serving a local preview. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - scrape: Fetch the country market-cap table and print or export it
//   - companies: Show the largest companies of a country
//   - empires: Aggregate countries into empire totals
//   - render: Generate PNG, HTML image-map, SVG, JSON, or CSV artifacts
//   - publish: Render and push artifacts to the GitHub data repository
//   - serve: Run a local preview server for the generated map
//   - cache: Manage the pipeline and HTTP caches
//   - github: Manage the stored GitHub session
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayeeff/marketmap/pkg/buildinfo"
	"github.com/ayeeff/marketmap/pkg/cache"
	"github.com/ayeeff/marketmap/pkg/pipeline"
	"github.com/ayeeff/marketmap/pkg/render"
	"github.com/ayeeff/marketmap/pkg/scrape"
)

// appName is the application name used for directories and display.
const appName = "marketmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger and loaded config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: LoadConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Marketmap renders country market caps as treemaps",
		Long:         `Marketmap scrapes total market capitalization by country, lays the shares out as a treemap, and renders the result as PNG images, HTML image maps, SVG, JSON, or CSV. Artifacts can be published to a GitHub data repository.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.scrapeCommand())
	root.AddCommand(c.companiesCommand())
	root.AddCommand(c.empiresCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.githubCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. The cache backend is
// selected by config; refresh also bypasses the scrape client's HTTP page
// cache, not just the pipeline stages.
func (c *CLI) newRunner(ctx context.Context, noCache, refresh bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	scraper, err := c.newScraper(refresh)
	if err != nil {
		return nil, err
	}

	images, err := render.NewImageFetcher("")
	if err != nil {
		images = nil // overlays degrade to placeholders
	}

	return pipeline.NewRunner(store, nil, c.Logger, scraper, images), nil
}

// newScraper creates a scrape client honoring the configured source URL.
func (c *CLI) newScraper(refresh bool) (*scrape.Client, error) {
	return scrape.NewClient(scrape.Options{
		BaseURL: c.Config.SourceURL,
		Refresh: refresh,
	})
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/marketmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	return strings.Split(s, ",")
}

// writeArtifact writes one rendered artifact to base.format, creating
// parent directories as needed.
func writeArtifact(base, format string, data []byte) (string, error) {
	path := base + "." + format
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
