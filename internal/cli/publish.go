package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayeeff/marketmap/pkg/github"
	"github.com/ayeeff/marketmap/pkg/pipeline"
)

// Repository paths the artifacts are published under.
const (
	pathCountriesCSV = "data/countries_marketcap.csv"
	pathEmpireCSV    = "data/empire_marketcap.csv"
	pathGlobalPNG    = "img/map1.png"
	pathEmpirePNG    = "img/map2.png"
	pathGlobalHTML   = "html/map1.html"
	pathEmpireHTML   = "html/map2.html"
)

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	var (
		empires  bool
		withHTML bool
		refresh  bool
		repoFlag string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Render and push artifacts to the GitHub data repository",
		Long: `Render the treemap and upsert the CSV, PNG, and optionally the HTML
image map into the configured GitHub repository.

The token is read from the environment variable named in the config
(GITHUB_TOKEN by default), falling back to the stored session from
'marketmap github login'. Commit messages carry a UTC timestamp.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, repo := c.Config.Repo.Owner, c.Config.Repo.Name
			if repoFlag != "" {
				var err error
				owner, repo, err = splitRepo(repoFlag)
				if err != nil {
					return err
				}
			}

			token := c.Config.Token()
			if token == "" {
				if sess, err := loadGitHubSession(ctx); err == nil {
					token = sess.AccessToken
				}
			}
			if token == "" {
				return fmt.Errorf("no GitHub token: set %s or run 'marketmap github login'", c.Config.Repo.TokenEnv)
			}

			runner, err := c.newRunner(ctx, false, refresh)
			if err != nil {
				return err
			}
			defer runner.Close()

			formats := []string{pipeline.FormatCSV, pipeline.FormatPNG}
			if withHTML {
				formats = append(formats, pipeline.FormatHTML)
			}

			spinner := newSpinnerWithContext(ctx, "Rendering artifacts...")
			spinner.Start()

			result, err := runner.Execute(ctx, c.pipelineOptions(&renderOpts{
				formats:  formats,
				empires:  empires,
				overlays: true,
				refresh:  refresh,
			}))
			if err != nil {
				spinner.StopWithError("Render failed")
				return err
			}
			spinner.Stop()
			printSuccess("Rendered %d artifacts", len(result.Artifacts))

			client := github.NewContentClient(token)
			uploads := publishTargets(empires, withHTML, result.Artifacts)

			for _, u := range uploads {
				spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Uploading %s...", u.path))
				spinner.Start()

				res, err := client.UpsertFile(ctx, owner, repo, u.path, u.message, u.data)
				if err != nil {
					spinner.StopWithError(fmt.Sprintf("Upload failed: %s", u.path))
					return err
				}
				spinner.Stop()

				verb := "Updated"
				if res.Created {
					verb = "Created"
				}
				printSuccess("%s %s/%s:%s", verb, owner, repo, res.Path)
			}

			printNewline()
			printDetail("Repository: https://github.com/%s/%s", owner, repo)
			return nil
		},
	}

	cmd.Flags().BoolVar(&empires, "empires", false, "publish the empire map instead of the country map")
	cmd.Flags().BoolVar(&withHTML, "html", false, "also publish the HTML image map")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and recompute")
	cmd.Flags().StringVar(&repoFlag, "repo", "", "target repository as owner/name (overrides config)")

	return cmd
}

// upload pairs one artifact with its repository destination.
type upload struct {
	path    string
	message string
	data    []byte
}

// publishTargets maps rendered artifacts to repo paths and commit messages.
func publishTargets(empires, withHTML bool, artifacts map[string][]byte) []upload {
	var uploads []upload
	if empires {
		uploads = append(uploads,
			upload{pathEmpireCSV, "Update empire market cap analysis", artifacts[pipeline.FormatCSV]},
			upload{pathEmpirePNG, "Update empire treemap image", artifacts[pipeline.FormatPNG]},
		)
		if withHTML {
			uploads = append(uploads, upload{pathEmpireHTML, "Update empire image map", artifacts[pipeline.FormatHTML]})
		}
		return uploads
	}

	uploads = append(uploads,
		upload{pathCountriesCSV, "Update countries market cap data", artifacts[pipeline.FormatCSV]},
		upload{pathGlobalPNG, "Update global treemap image", artifacts[pipeline.FormatPNG]},
	)
	if withHTML {
		uploads = append(uploads, upload{pathGlobalHTML, "Update global image map", artifacts[pipeline.FormatHTML]})
	}
	return uploads
}

// splitRepo parses an owner/name argument.
func splitRepo(s string) (owner, name string, err error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			owner, name = s[:i], s[i+1:]
			if owner == "" || name == "" {
				break
			}
			return owner, name, nil
		}
	}
	return "", "", fmt.Errorf("invalid repo %q (want owner/name)", s)
}
