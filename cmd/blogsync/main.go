package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yljiang/blogsync/internal/article"
	"github.com/yljiang/blogsync/internal/config"
	"github.com/yljiang/blogsync/internal/debuglog"
	"github.com/yljiang/blogsync/internal/images"
	"github.com/yljiang/blogsync/internal/markdown"
	"github.com/yljiang/blogsync/internal/notion"
	"github.com/yljiang/blogsync/internal/sync"
	"github.com/yljiang/blogsync/internal/syncstate"
)

// Version is the version of the application, set at build time
var Version = "dev"

func main() {
	defer debuglog.Close()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "blogsync",
		Short:         "Synchronize Notion pages into the blog's Markdown articles",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := cfg.Log.Level
			if a.logLevel != "" {
				level = a.logLevel
			}
			return debuglog.Setup(debuglog.ParseLogLevel(level), cfg.Log.File)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR, OFF)")

	root.AddCommand(
		newSyncCmd(a),
		newWatchCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newPreviewCmd(a),
		newInitCmd(),
	)
	return root
}

func newSyncCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSynchronizer(a.cfg)
			if err != nil {
				return err
			}

			res, err := s.Run(cmd.Context(), force)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "reprocess every document, ignoring the last sync time")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync on a fixed interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSynchronizer(a.cfg)
			if err != nil {
				return err
			}

			if interval <= 0 {
				interval = a.cfg.Sync.Interval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Watching for changes every %s, Ctrl+C to stop\n", interval)

			// Runs are strictly serialized: a tick fires the next sync only
			// after the previous one finished.
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				res, err := s.Run(ctx, false)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					debuglog.Errorf("sync run failed: %v", err)
					fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
				} else if res.Changed() {
					printResult(res)
				}

				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "sync interval (defaults to sync.interval from config)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := article.NewRepository(a.cfg.Sync.ArticlesDir)
			if err != nil {
				return err
			}

			articles, err := repo.List()
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				fmt.Println("No articles yet.")
				return nil
			}

			for _, art := range articles {
				line := fmt.Sprintf("%-28s  %-10s  %s", art.ID, art.Date, art.Title)
				if art.Category != "" {
					line += "  [" + art.Category + "]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <article-id>",
		Short: "Print an article's raw Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := article.NewRepository(a.cfg.Sync.ArticlesDir)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(repo.Path(args[0]))
			if err != nil {
				return fmt.Errorf("reading article %s: %w", args[0], err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newPreviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <article-id>",
		Short: "Render a local article in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := article.NewRepository(a.cfg.Sync.ArticlesDir)
			if err != nil {
				return err
			}

			art, err := repo.Read(args[0])
			if err != nil {
				return err
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				return fmt.Errorf("creating renderer: %w", err)
			}

			out, err := renderer.Render("# " + art.Title + "\n\n" + art.Body)
			if err != nil {
				return fmt.Errorf("rendering article: %w", err)
			}

			fmt.Println(headerStyle.Render(art.Date + " · " + art.ReadTime))
			fmt.Print(out)
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := os.UserHomeDir()
			configFile := filepath.Join(home, ".config", "blogsync", "config.toml")

			if err := config.GenerateDefaultConfig(configFile); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Printf("Generated default configuration at: %s\n", configFile)
			return nil
		},
	}
}

// buildSynchronizer wires the sync engine from configuration. Configuration
// errors surface here, before any remote call.
func buildSynchronizer(cfg *config.Config) (*sync.Synchronizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := notion.NewClient(cfg.Notion.Token)
	client.SetTimeout(cfg.HTTP.Timeout)
	client.SetRetryPolicy(notion.RetryPolicy{
		MaxAttempts: cfg.HTTP.MaxRetries,
		Delay:       cfg.HTTP.RetryDelay,
	})

	localizer, err := images.NewLocalizer(cfg.Sync.ImagesDir, cfg.Sync.ImagePublicPath)
	if err != nil {
		return nil, err
	}

	repo, err := article.NewRepository(cfg.Sync.ArticlesDir)
	if err != nil {
		return nil, err
	}

	states := syncstate.NewStore(cfg.Sync.StateFile)
	converter := markdown.NewConverter(client)

	return sync.New(client, converter, localizer, repo, states, cfg.Notion.DatabaseID), nil
}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8"))

	tallyLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true)

	tallyValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EAEAEA"))
)

func printResult(res *sync.Result) {
	rows := []struct {
		label string
		value int
	}{
		{"new", res.New},
		{"updated", res.Updated},
		{"skipped", res.Skipped},
		{"deleted", res.Deleted},
		{"total", res.Total},
	}

	fmt.Println(tallyLabel.Render("Sync complete"))
	for _, row := range rows {
		fmt.Printf("  %s %s\n",
			tallyLabel.Render(fmt.Sprintf("%-8s", row.label)),
			tallyValue.Render(fmt.Sprintf("%d", row.value)))
	}
}
