package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayeeff/marketmap/pkg/github"
	"github.com/ayeeff/marketmap/pkg/session"
)

// sessionTTL is the duration for CLI sessions (30 days).
const sessionTTL = 30 * 24 * time.Hour

// githubCommand creates the github command with subcommands.
func (c *CLI) githubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github",
		Short: "Manage the stored GitHub session",
		Long: `Store and inspect the GitHub token used by 'marketmap publish'.

The token is verified against the GitHub API and saved in
~/.config/marketmap/sessions/. The configured token environment variable
always takes precedence over the stored session.`,
	}

	cmd.AddCommand(c.githubLoginCommand())
	cmd.AddCommand(c.githubLogoutCommand())
	cmd.AddCommand(c.githubWhoamiCommand())

	return cmd
}

// githubLoginCommand creates the login subcommand.
func (c *CLI) githubLoginCommand() *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify and store a GitHub token",
		Long: `Verify a personal access token and save it as the CLI session.

The token is read from --token, the configured environment variable, or
an interactive prompt, in that order. It needs the contents:write scope
on the data repository.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if existing, _ := loadGitHubSession(ctx); existing != nil {
				printInfo("Already logged in as @%s", existing.User.Login)
				printDetail("Run 'marketmap github logout' first to re-authenticate")
				return nil
			}

			token := tokenFlag
			if token == "" {
				token = c.Config.Token()
			}
			if token == "" {
				var err error
				token, err = promptToken()
				if err != nil {
					return err
				}
			}
			if token == "" {
				return fmt.Errorf("no token provided")
			}

			verifyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(verifyCtx, "Verifying token...")
			spinner.Start()

			client := github.NewContentClient(token)
			user, err := client.FetchUser(verifyCtx)
			if err != nil {
				spinner.StopWithError("Token invalid")
				return fmt.Errorf("verify token: %w", err)
			}
			spinner.Stop()

			if _, err := saveGitHubSession(ctx, token, user); err != nil {
				return err
			}

			printSuccess("Logged in as @%s", user.Login)
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "personal access token to store")

	return cmd
}

// githubLogoutCommand creates the logout subcommand.
func (c *CLI) githubLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored GitHub credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deleteGitHubSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// githubWhoamiCommand creates the whoami subcommand.
func (c *CLI) githubWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently authenticated GitHub user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := loadGitHubSession(ctx)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Verifying session...")
			spinner.Start()

			client := github.NewContentClient(sess.AccessToken)
			user, err := client.FetchUser(ctx)
			if err != nil {
				spinner.StopWithError("Session invalid")
				return fmt.Errorf("verify session: %w", err)
			}
			spinner.Stop()

			printSuccess("GitHub Session")
			printKeyValue("Username", "@"+user.Login)
			if user.Name != "" {
				printKeyValue("Name", user.Name)
			}
			if user.Email != "" {
				printKeyValue("Email", user.Email)
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))

			return nil
		},
	}
}

// loadGitHubSession loads the CLI session from disk.
func loadGitHubSession(ctx context.Context) (*session.Session, error) {
	store, err := session.NewCLIStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in (run 'marketmap github login' first)")
	}

	return sess, nil
}

func saveGitHubSession(ctx context.Context, token string, user *github.User) (*session.Session, error) {
	store, err := session.NewCLIStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := session.New(token, user, sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return sess, nil
}

func deleteGitHubSession(ctx context.Context) error {
	store, err := session.NewCLIStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	return store.DeleteSession(ctx)
}

// promptToken reads a token from stdin without echoing a form.
func promptToken() (string, error) {
	printInline("GitHub token: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	printNewline()
	return strings.TrimSpace(line), nil
}
