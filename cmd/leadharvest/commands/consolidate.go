package commands

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leadharvest/leadharvest/internal/config"
	"github.com/leadharvest/leadharvest/internal/consolidate"
	"github.com/leadharvest/leadharvest/internal/retry"
	"github.com/leadharvest/leadharvest/internal/store"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Fold all collected runs into leads.csv",
	Long: `Consolidate merges the existing leads.csv with every run file found
under the data directory, deduplicates the result, drops failed and
contactless rows, and overwrites leads.csv.

A configured model provider improves the merge by grouping rows that
describe the same business under different URLs; without one, rows are
kept separate and deduplicated by source URL only.`,
	RunE: runConsolidate,
}

func init() {
	rootCmd.AddCommand(consolidateCmd)

	flags := consolidateCmd.Flags()
	flags.StringP("provider", "p", "", "LLM provider: anthropic, openai, openrouter, ollama (auto-detects from env vars)")
	flags.StringP("model", "m", "", "model name (provider-specific)")
	flags.String("api-key", "", "API key (or use env var)")
	flags.String("base-url", "", "custom API base URL")
	flags.Bool("no-model", false, "skip the model merge pass")

	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	initLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logError("%v", err)
		return err
	}

	leadsPath := filepath.Join(cfg.DataDir, store.LeadsFileName)
	pool, err := consolidate.Pool(leadsPath, cfg.DataDir)
	if err != nil {
		logError("%v", err)
		return err
	}
	if len(pool) == 0 {
		logInfo("Nothing to consolidate: no leads.csv and no run files under %s", cfg.DataDir)
		return nil
	}

	noModel, _ := cmd.Flags().GetBool("no-model")
	var c *consolidate.Consolidator
	if noModel {
		c = consolidate.New(nil, retry.Default, consolidate.DefaultConfig())
	} else {
		c = consolidate.New(buildProvider(cfg), retry.Default, consolidate.DefaultConfig())
	}

	merged, err := c.Consolidate(ctx, pool, time.Now())
	if err != nil {
		logError("consolidation failed: %v", err)
		return err
	}
	if err := store.WriteLeads(leadsPath, merged); err != nil {
		logError("writing %s: %v", leadsPath, err)
		return err
	}

	logInfo("Consolidated %d rows into %d leads: %s", len(pool), len(merged), leadsPath)
	return nil
}
