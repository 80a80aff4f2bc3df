// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfvision CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfvision/internal/logging"
	"github.com/pdiddy/pdfvision/internal/secrets"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the pdfvision CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfvision",
	Short: "Convert PDF pages to markdown with a vision model",
	Long: `pdfvision finds the tables, figures and graphics on each PDF page, crops
them to PNG files and asks a vision model to transcribe the page into
markdown that links the crops.

Subcommands: convert runs the full pipeline, regions prints the detected
regions without calling a model, and ledger inspects recorded runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.SetLevel(viper.GetString("log_level"))

		s, err := secrets.Load(".secrets/", logging.Default)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logging.Default.Debugf("loaded secrets: %v", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfvision.yaml or ~/.config/pdfvision/pdfvision.yaml)")
	rootCmd.PersistentFlags().String("log-level", logging.LevelInfo, "log level: debug, info, warn or error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults(types.DefaultConversionConfig())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfvision")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfvision"))
		}
	}

	// PDFVISION_VISION_MODEL overrides vision.model.
	viper.SetEnvPrefix("PDFVISION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so that environment
// variables reach viper.Unmarshal.
func setDefaults(cfg types.ConversionConfig) {
	l := cfg.Layout
	viper.SetDefault("layout.short_line_height", l.ShortLineHeight)
	viper.SetDefault("layout.short_line_width", l.ShortLineWidth)
	viper.SetDefault("layout.merge_distance", l.MergeDistance)
	viper.SetDefault("layout.horizontal_distance", l.HorizontalDistance)
	viper.SetDefault("layout.large_text_min_avg_chars", l.LargeTextMinAvgChars)
	viper.SetDefault("layout.large_text_distance", l.LargeTextDistance)
	viper.SetDefault("layout.small_text_distance", l.SmallTextDistance)
	viper.SetDefault("layout.remerge_distance", l.RemergeDistance)
	viper.SetDefault("layout.min_region_size", l.MinRegionSize)

	r := cfg.Render
	viper.SetDefault("render.backend", string(r.Backend))
	viper.SetDefault("render.container_image", r.ContainerImage)
	viper.SetDefault("render.crop_scale", r.CropScale)
	viper.SetDefault("render.page_scale", r.PageScale)

	v := cfg.Vision
	viper.SetDefault("vision.provider", string(v.Provider))
	viper.SetDefault("vision.model", v.Model)
	viper.SetDefault("vision.base_url", v.BaseURL)
	viper.SetDefault("vision.api_key", v.APIKey)
	viper.SetDefault("vision.workers", v.Workers)
	viper.SetDefault("vision.role_prompt", v.RolePrompt)
	viper.SetDefault("vision.prompt", v.Prompt)
	viper.SetDefault("vision.region_prompt", v.RegionPrompt)

	viper.SetDefault("output_dir", cfg.OutputDir)
	viper.SetDefault("keep_pages", cfg.KeepPages)
	viper.SetDefault("frontmatter", cfg.Frontmatter)
	viper.SetDefault("ledger", cfg.Ledger)
}

// bindFlags binds each configuration key to the named flag of fs.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

// loadConfig resolves the effective configuration from defaults, the
// config file, PDFVISION_* variables and bound flags.
func loadConfig() (types.ConversionConfig, error) {
	cfg := types.DefaultConversionConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Vision.APIKey = secrets.APIKey(cfg.Vision.APIKey, cfg.Vision.Provider, loadedSecrets)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
