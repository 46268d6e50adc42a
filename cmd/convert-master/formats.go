// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/convert-master/internal/convert"
)

// formatEntry is one row of the formats listing.
type formatEntry struct {
	Source    string `json:"source" yaml:"source"`
	Target    string `json:"target" yaml:"target"`
	Converter string `json:"converter" yaml:"converter"`
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported conversions",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("format")
		return writeFormats(cmd.OutOrStdout(), convert.NewDispatcher(), output)
	},
}

func writeFormats(w io.Writer, d *convert.Dispatcher, output string) error {
	var entries []formatEntry
	for _, p := range d.Pairs() {
		kind, err := d.Lookup(p.Source, p.Target)
		if err != nil {
			return err
		}
		entries = append(entries, formatEntry{Source: p.Source, Target: p.Target, Converter: kind.String()})
	}

	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tTARGET\tCONVERTER")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Source, e.Target, e.Converter)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
}

func init() {
	formatsCmd.Flags().String("format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(formatsCmd)
}
