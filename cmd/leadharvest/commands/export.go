package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leadharvest/leadharvest/internal/config"
	"github.com/leadharvest/leadharvest/internal/export"
	"github.com/leadharvest/leadharvest/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads.csv as JSON, JSONL or YAML",
	Long: `Export converts the consolidated lead store into a machine-readable
format. Placeholder values ("Not Found", "N/A") are dropped, so every
field present in the output carries real data.

Examples:
  # Print the lead list as JSON
  leadharvest export

  # Write one JSON object per line to a file
  leadharvest export --format jsonl -o leads.jsonl`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	flags := exportCmd.Flags()
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.StringP("output", "o", "", "output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			logError("creating %s: %v", path, err)
			return err
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	if err := export.Write(out, export.Format(format), rows); err != nil {
		logError("export failed: %v", err)
		return err
	}
	return nil
}
