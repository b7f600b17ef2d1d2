package commands

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leadharvest/leadharvest/internal/browser"
	"github.com/leadharvest/leadharvest/internal/config"
	"github.com/leadharvest/leadharvest/internal/consolidate"
	"github.com/leadharvest/leadharvest/internal/extract"
	"github.com/leadharvest/leadharvest/internal/llm"
	"github.com/leadharvest/leadharvest/internal/logger"
	"github.com/leadharvest/leadharvest/internal/pipeline"
	"github.com/leadharvest/leadharvest/internal/retry"
	"github.com/leadharvest/leadharvest/internal/scrape"
	"github.com/leadharvest/leadharvest/internal/search"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search keywords and scrape the pages found",
	Long: `Run the full harvest: expand the keyword categories into search
combinations, collect candidate page URLs, scrape each page for contact
details, and save the results as a timestamped run CSV.

Examples:
  # Basic run
  leadharvest run -k keywords.yaml

  # Facebook only, three result pages per combination
  leadharvest run -k keywords.yaml --platforms facebook --pages 3

  # Full run followed by consolidation and list extraction
  leadharvest run -k keywords.yaml --consolidate --lists`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()

	flags.StringP("keywords", "k", "", "path to keywords YAML file (required)")

	// Search settings
	flags.Int("pages", 5, "result pages per keyword combination")
	flags.StringSlice("platforms", []string{"facebook", "instagram"}, "platforms to search: facebook, instagram")

	// LLM settings
	flags.StringP("provider", "p", "", "LLM provider: anthropic, openai, openrouter, ollama (auto-detects from env vars)")
	flags.StringP("model", "m", "", "model name (provider-specific)")
	flags.String("api-key", "", "API key (or use env var)")
	flags.String("base-url", "", "custom API base URL")
	flags.String("max-content-size", "15KB", "max page text sent to the model (e.g. 15KB, 1MB, 0=unlimited)")

	// Browser settings
	flags.Bool("headless", true, "run the browser without a display")
	flags.Duration("nav-timeout", 45*time.Second, "page navigation timeout")
	flags.Duration("delay-min", 3*time.Second, "minimum pause between page scrapes")
	flags.Duration("delay-max", 6*time.Second, "maximum pause between page scrapes")
	flags.String("snapshot-dir", "", "save debug captures of failed pages here")

	// Post-run phases
	flags.Bool("consolidate", false, "fold this run into leads.csv afterwards")
	flags.Bool("lists", false, "refresh the per-channel value lists afterwards")
	flags.String("status-file", "", "write run progress to this JSON file")

	_ = runCmd.MarkFlagRequired("keywords")

	_ = viper.BindPFlag("keywords_file", flags.Lookup("keywords"))
	_ = viper.BindPFlag("pages", flags.Lookup("pages"))
	_ = viper.BindPFlag("platforms", flags.Lookup("platforms"))
	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("headless", flags.Lookup("headless"))
	_ = viper.BindPFlag("nav_timeout", flags.Lookup("nav-timeout"))
	_ = viper.BindPFlag("delay_min", flags.Lookup("delay-min"))
	_ = viper.BindPFlag("delay_max", flags.Lookup("delay-max"))
	_ = viper.BindPFlag("snapshot_dir", flags.Lookup("snapshot-dir"))
	_ = viper.BindPFlag("consolidate", flags.Lookup("consolidate"))
	_ = viper.BindPFlag("update_lists", flags.Lookup("lists"))
	_ = viper.BindPFlag("status_file", flags.Lookup("status-file"))
}

func runRun(cmd *cobra.Command, args []string) error {
	initLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logError("%v", err)
		return err
	}

	// The content size flag is human-readable; parse it here rather than
	// teaching the config layer about unit suffixes.
	sizeStr, _ := cmd.Flags().GetString("max-content-size")
	if s := strings.TrimSpace(sizeStr); s != "" && s != "0" {
		bytes, err := humanize.ParseBytes(s)
		if err != nil {
			logError("invalid max-content-size %q: %v", sizeStr, err)
			return err
		}
		cfg.MaxContentSize = int(bytes)
	} else if s == "0" {
		cfg.MaxContentSize = 0
	}

	keywords, err := config.LoadKeywords(cfg.KeywordsFile)
	if err != nil {
		logError("%v", err)
		return err
	}

	provider := buildProvider(cfg)

	b, err := browser.New(browser.Config{
		Headless:   cfg.Headless,
		NavTimeout: cfg.NavTimeout,
	})
	if err != nil {
		logError("%v", err)
		return err
	}
	defer b.Close()

	harvester := search.New(b, search.Config{
		PagesPerSearch: cfg.Pages,
		Platforms:      cfg.Platforms,
		DelayMin:       cfg.DelayMin,
		DelayMax:       cfg.DelayMax,
	})

	// One retry policy for every remote model call, per-page and batch.
	policy := retry.Default

	extractor := extract.New(provider,
		extract.WithMaxContentSize(cfg.MaxContentSize),
		extract.WithRetryPolicy(policy))
	static := browser.NewStaticFetcher("", cfg.NavTimeout)
	scraper := scrape.New(b, static, extractor, scrape.Config{SnapshotDir: cfg.SnapshotDir})

	var merger pipeline.Merger
	if cfg.Consolidate {
		merger = consolidate.New(provider, policy, consolidate.DefaultConfig())
	}

	reporter := buildReporter(cfg)

	p := pipeline.New(harvester, scraper, merger, reporter, pipeline.Config{
		DataDir:     cfg.DataDir,
		DelayMin:    cfg.DelayMin,
		DelayMax:    cfg.DelayMax,
		Consolidate: cfg.Consolidate,
		UpdateLists: cfg.UpdateLists,
	})

	sum, err := p.Run(ctx, keywords.Lists())
	if err != nil {
		logError("run failed: %v", err)
		return err
	}

	logInfo("Run complete: %d combinations, %d URLs found, %d pages scraped",
		sum.Combinations, sum.Candidates, sum.Scraped)
	if sum.RunFile != "" {
		logInfo("Results: %s", sum.RunFile)
	}
	if cfg.Consolidate {
		logInfo("Lead store: %d leads after consolidation", sum.Consolidated)
	}
	for file, n := range sum.ListsAdded {
		if n > 0 {
			logInfo("List %s: %d new entries", file, n)
		}
	}
	return nil
}

// buildProvider resolves the model backend from config and environment.
// Nil is a valid outcome; extraction then runs without the model tier.
func buildProvider(cfg config.Config) llm.Provider {
	name, apiKey := cfg.Provider, cfg.APIKey
	if name == "" {
		name, apiKey = llm.DetectProvider()
		if cfg.APIKey != "" {
			apiKey = cfg.APIKey
		}
	}

	model := cfg.Model
	if model == "" {
		model = llm.GetDefaultModel(name)
	}

	provider, err := llm.NewProvider(name, llm.ProviderConfig{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Model:   model,
	})
	if err != nil {
		logger.Warn("model provider unavailable, extraction will rely on page data only",
			"provider", name, "error", err)
		return nil
	}
	logger.Info("model provider ready", "provider", name, "model", model)
	return provider
}

func buildReporter(cfg config.Config) pipeline.Reporter {
	reporters := pipeline.MultiReporter{pipeline.LogReporter{}}
	if cfg.StatusFile != "" {
		reporters = append(reporters, pipeline.NewFileReporter(cfg.StatusFile))
	}
	return reporters
}
