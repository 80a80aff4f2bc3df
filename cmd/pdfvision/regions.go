// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfvision/internal/convert"
)

var regionsCmd = &cobra.Command{
	Use:   "regions <pdf>",
	Short: "Print the detected content regions of each page",
	Long: `Regions runs region detection on every page of a PDF and prints the
regions with their names, coordinates in PDF points and per-stage counts.
Nothing is rendered and no model is called, which makes it useful for
tuning the layout.* thresholds in the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegions,
}

func runRegions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pages, err := convert.DetectRegions(args[0], cfg.Layout)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("encoding regions: %w", err)
	}
	return enc.Close()
}

func init() {
	regionsCmd.Flags().Bool("json", false, "print JSON instead of YAML")

	rootCmd.AddCommand(regionsCmd)
}
