// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/convert-master/internal/convert"
	"github.com/pdiddy/convert-master/internal/presentation"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>...",
	Short: "Convert local files without the chat bot",
	Long: `Convert runs the bot's conversion dispatcher on local files. The source
format of each file is taken from its extension. Outputs are written next to
each input, or into --out-dir, with the target extension. Existing outputs are
skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateConversion(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		to, _ := cmd.Flags().GetString("to")
		outDir, _ := cmd.Flags().GetString("out-dir")
		perPage, _ := cmd.Flags().GetInt("items-per-page")
		if perPage < 1 || perPage > presentation.MaxPerPage {
			return fmt.Errorf("--items-per-page must be between 1 and %d", presentation.MaxPerPage)
		}
		if outDir != "" {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}

		d, _ := newDispatcher(cfg)
		result := convert.ConvertPaths(cmd.Context(), d, args, to, outDir, perPage, cmd.OutOrStdout())
		if result.HasFailures() {
			return fmt.Errorf("%d of %d conversions failed", result.Failed, result.Total())
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().String("to", "", "target format: pdf, docx, jpg, png or tiff")
	convertCmd.Flags().String("out-dir", "", "directory for outputs (default: next to each input)")
	convertCmd.Flags().Int("items-per-page", 1, "slides per page for presentation to pdf")
	_ = convertCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(convertCmd)
}
