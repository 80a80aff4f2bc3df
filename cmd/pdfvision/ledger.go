// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfvision/internal/ledger"
	"github.com/pdiddy/pdfvision/pkg/types"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect recorded conversion runs",
	Long: `Ledger reads the SQLite run ledger that convert --ledger writes. Each run
records the document, its status, the pages that failed and every region
that was cropped.`,
}

// --- list subcommand ---

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runLedgerList,
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-24s  %-9s  %5s  %7s  %-10s  %s\n",
		"Run", "Document", "Status", "Pages", "Regions", "Failed", "Finished")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))

	for _, r := range runs {
		doc := r.DocumentID
		if len(doc) > 24 {
			doc = doc[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-24s  %-9s  %5d  %7d  %-10s  %s\n",
			shortID(r.ID), doc, r.Status, r.Pages, r.RegionCount(),
			failedPages(r.FailedPages), r.FinishedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// failedPages lists 1-based page numbers.
func failedPages(pages []int) string {
	if len(pages) == 0 {
		return "-"
	}
	s := make([]string, len(pages))
	for i, p := range pages {
		s[i] = fmt.Sprint(p + 1)
	}
	return strings.Join(s, ",")
}

// --- show subcommand ---

var ledgerShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its regions",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, ledger.ErrNotFound) {
		return fmt.Errorf("run %s not found", args[0])
	}
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(run); err != nil {
		return err
	}
	return enc.Close()
}

// --- export subcommand ---

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs with their regions as YAML or JSON",
	RunE:  runLedgerExport,
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd)
	switch format {
	case "yaml", "":
		return store.ExportYAML(cmd.Context(), os.Stdout, opts)
	case "json":
		return store.ExportJSON(cmd.Context(), os.Stdout, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

// --- shared helpers ---

// openLedger opens the --db flag, falling back to the configured ledger.
func openLedger(cmd *cobra.Command) (*ledger.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Ledger
	}
	if path == "" {
		return nil, fmt.Errorf("no ledger configured: pass --db or set ledger in the config file")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("ledger %s: %w", path, err)
	}
	return ledger.Open(path)
}

func queryOptsFromFlags(cmd *cobra.Command) ledger.QueryOptions {
	doc, _ := cmd.Flags().GetString("document")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	return ledger.QueryOptions{
		DocumentID: doc,
		Status:     types.ConversionStatus(status),
		Limit:      limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	ledgerCmd.PersistentFlags().String("db", "", "ledger SQLite file (default: the configured ledger)")
	ledgerCmd.PersistentFlags().String("document", "", "filter by document ID")
	ledgerCmd.PersistentFlags().String("status", "", "filter by status: converted, partial or failed")
	ledgerCmd.PersistentFlags().Int("limit", 0, "maximum runs (0 = all)")

	ledgerExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)

	rootCmd.AddCommand(ledgerCmd)
}
