package cli

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/ayeeff/marketmap/pkg/pipeline"
)

// serveCommand creates the serve command running a local preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local preview server for the generated maps",
		Long: `Start an HTTP server rendering treemaps on demand.

Routes:
  GET /              index page linking the preview routes
  GET /map.png       raster treemap
  GET /map.html      HTML image-map snippet
  GET /map.svg       vector treemap
  GET /map.json      layout export
  GET /data.csv      underlying table

Query parameters: empires=1, limit=N, overlays=1, refresh=1,
algorithm=slice|greedy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, noCache, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           c.previewRouter(runner),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				_ = srv.Close()
			}()

			printSuccess("Preview server listening")
			printKeyValue("Address", "http://"+addr)
			printDetail("Press Ctrl+C to stop")

			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

// previewRouter builds the chi router serving rendered artifacts.
func (c *CLI) previewRouter(runner *pipeline.Runner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", c.handleIndex)
	r.Get("/map.png", c.handleArtifact(runner, pipeline.FormatPNG, "image/png"))
	r.Get("/map.html", c.handleArtifact(runner, pipeline.FormatHTML, "text/html; charset=utf-8"))
	r.Get("/map.svg", c.handleArtifact(runner, pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/map.json", c.handleArtifact(runner, pipeline.FormatJSON, "application/json"))
	r.Get("/data.csv", c.handleArtifact(runner, pipeline.FormatCSV, "text/csv"))

	return r
}

func (c *CLI) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!doctype html>
<title>marketmap preview</title>
<h1>marketmap preview</h1>
<ul>
<li><a href="/map.png">map.png</a></li>
<li><a href="/map.html">map.html</a></li>
<li><a href="/map.svg">map.svg</a></li>
<li><a href="/map.json">map.json</a></li>
<li><a href="/data.csv">data.csv</a></li>
</ul>
<p>Append <code>?empires=1</code> for the empire map, <code>?limit=N</code> to change the cut.</p>
`)
}

// handleArtifact renders one format per request, honoring query parameters.
func (c *CLI) handleArtifact(runner *pipeline.Runner, format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := c.pipelineOptions(&renderOpts{formats: []string{format}})
		applyQuery(&opts, r)

		result, err := runner.Execute(r.Context(), opts)
		if err != nil {
			c.Logger.Error("preview render failed", "format", format, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(result.Artifacts[format])
	}
}

// applyQuery overlays URL query parameters onto the pipeline options.
func applyQuery(opts *pipeline.Options, r *http.Request) {
	q := r.URL.Query()
	if q.Get("empires") == "1" || q.Get("empires") == "true" {
		opts.Empires = true
		opts.Title = ""
		opts.MapName = ""
		opts.ImageURL = ""
	}
	if q.Get("overlays") == "1" || q.Get("overlays") == "true" {
		opts.Overlays = true
	}
	if q.Get("refresh") == "1" || q.Get("refresh") == "true" {
		opts.Refresh = true
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := q.Get("algorithm"); v != "" {
		opts.Algorithm = v
	}
}
