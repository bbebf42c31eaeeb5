package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/autopost/internal/caption"
	"github.com/TobiSchelling/autopost/internal/config"
	"github.com/TobiSchelling/autopost/internal/feed"
	"github.com/TobiSchelling/autopost/internal/fetch"
	"github.com/TobiSchelling/autopost/internal/llm"
	"github.com/TobiSchelling/autopost/internal/oplog"
	"github.com/TobiSchelling/autopost/internal/preview"
	"github.com/TobiSchelling/autopost/internal/publish"
	"github.com/TobiSchelling/autopost/internal/run"
	"github.com/TobiSchelling/autopost/internal/schedule"
	"github.com/TobiSchelling/autopost/internal/store"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "autopost",
	Short:   "Automatic LinkedIn promotion for new blog posts",
	Long:    "autopost watches an RSS feed, generates LinkedIn captions with the Anthropic API, and publishes the best one through the LinkedIn web interface, at most once per article.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetFlags(log.LstdFlags)

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("autopost", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/autopost/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set the feed URL, then export the credential environment variables.")
		return nil
	},
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check the feed once and publish the next unposted article",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		creds, err := cfg.ResolveCredentials()
		if err != nil {
			return err
		}

		closer, err := oplog.Setup(cfg.LogDir())
		if err != nil {
			return err
		}
		defer closer.Close()

		st, err := store.Open(cfg.Store.Backend, cfg.StorePath())
		if err != nil {
			return fmt.Errorf("opening dedup store: %w", err)
		}
		defer st.Close()

		orch := run.New(run.Deps{
			Store:     st,
			Source:    feed.NewScanner(cfg.Feed.URL),
			Enricher:  fetch.NewEnricher(0),
			Generator: caption.NewGenerator(llm.NewAnthropicProvider(creds.AnthropicAPIKey, cfg.Anthropic.Model), cfg.Anthropic.MaxTokens),
			NewPlatform: func(ctx context.Context) (publish.Platform, error) {
				return publish.NewLinkedIn(ctx, cfg.LinkedIn.Headless)
			},
			Email:    creds.LinkedInEmail,
			Password: creds.LinkedInPassword,
		})

		report := orch.Run(cmd.Context())
		if report.Outcome == run.OutcomeFailed {
			return fmt.Errorf("run failed (%s): %w", report.Kind, report.Err)
		}
		return nil
	},
}

// --- preview command ---

var previewOut string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate captions for the next unposted article without publishing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		apiKey := os.Getenv(cfg.Anthropic.APIKeyEnv)
		if apiKey == "" {
			return &config.ErrMissingSetting{Setting: cfg.Anthropic.APIKeyEnv}
		}

		st, err := store.Open(cfg.Store.Backend, cfg.StorePath())
		if err != nil {
			return fmt.Errorf("opening dedup store: %w", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		item, err := feed.NewScanner(cfg.Feed.URL).NextUnpublished(ctx, st)
		if err != nil {
			return err
		}
		if item == nil {
			fmt.Println("Nothing to preview: no unposted articles in the feed.")
			return nil
		}

		fetch.NewEnricher(0).Enrich(ctx, item)

		gen := caption.NewGenerator(llm.NewAnthropicProvider(apiKey, cfg.Anthropic.Model), cfg.Anthropic.MaxTokens)
		candidates, err := gen.Generate(ctx, item)
		if err != nil {
			return err
		}

		selected, err := caption.Select(candidates)
		if err != nil {
			return err
		}

		if err := preview.Render(previewOut, item, candidates, selected); err != nil {
			return err
		}
		fmt.Printf("Preview for %q written to %s (would publish: %s)\n", item.Title, previewOut, selected.StyleTag)
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "preview.html", "Output HTML file")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what has been published so far",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		st, err := store.Open(cfg.Store.Backend, cfg.StorePath())
		if err != nil {
			return fmt.Errorf("opening dedup store: %w", err)
		}
		defer st.Close()

		records := st.LoadAll()
		fmt.Printf("Store: %s (%s backend)\n", cfg.StorePath(), cfg.Store.Backend)
		fmt.Printf("Published articles: %d\n", len(records))
		if len(records) == 0 {
			return nil
		}

		type entry struct {
			fp  string
			rec store.Record
		}
		sorted := make([]entry, 0, len(records))
		for fp, rec := range records {
			sorted = append(sorted, entry{fp, rec})
		}
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].rec.PostedAt.After(sorted[j].rec.PostedAt)
		})

		fmt.Println()
		for _, e := range sorted {
			note := ""
			if e.rec.CommentMissing {
				note = " (link comment missing)"
			}
			fmt.Printf("  %s  %s [%s]%s\n", e.rec.PostedAt.Format("2006-01-02 15:04"), e.rec.Title, e.rec.StyleTag, note)
			fmt.Printf("      %s\n", e.rec.SourceURL)
		}
		return nil
	},
}

// --- schedule command ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run continuously, invoking a publish run on the configured interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		// Fail fast on missing credentials instead of on the first child run.
		if _, err := cfg.ResolveCredentials(); err != nil {
			return err
		}

		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolving own binary: %w", err)
		}

		childArgs := []string{"run"}
		if configPath != "" {
			childArgs = append(childArgs, "--config", configPath)
		}

		runner := &schedule.SubprocessRunner{
			Binary: self,
			Args:   childArgs,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		}

		schedule.Loop(cmd.Context(), runner, cfg.Schedule.Interval.Std(), cfg.Schedule.RunTimeout.Std())
		return nil
	},
}
