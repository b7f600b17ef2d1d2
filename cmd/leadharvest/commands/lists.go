package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leadharvest/leadharvest/internal/config"
	"github.com/leadharvest/leadharvest/internal/lists"
	"github.com/leadharvest/leadharvest/internal/store"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Refresh the per-channel value lists from leads.csv",
	Long: `Lists derives one CSV per contact channel from the consolidated lead
store: Facebook links, Instagram links, emails, and phone numbers.

Each file holds unique sorted values and grows incrementally; entries
already present are kept even when they no longer appear in leads.csv.`,
	RunE: runLists,
}

func init() {
	rootCmd.AddCommand(listsCmd)
}

func runLists(cmd *cobra.Command, args []string) error {
	initLogging()

	cfg, err := config.Load()
	if err != nil {
		logError("%v", err)
		return err
	}

	leadsPath := filepath.Join(cfg.DataDir, store.LeadsFileName)
	rows, err := store.ReadLeads(leadsPath)
	if err != nil {
		logError("reading %s: %v", leadsPath, err)
		return err
	}
	if rows == nil {
		err := fmt.Errorf("no lead store at %s, run consolidate first", leadsPath)
		logError("%v", err)
		return err
	}

	dir := filepath.Join(cfg.DataDir, lists.DirName)
	added, err := lists.Update(dir, rows)
	if err != nil {
		logError("updating lists: %v", err)
		return err
	}

	logInfo("Lists updated in %s:", dir)
	for file, n := range added {
		logInfo("  %s: %d new entries", file, n)
	}
	return nil
}
