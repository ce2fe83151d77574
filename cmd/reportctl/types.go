package main

import (
	"encoding/json"
	"fmt"

	"go-league/internal/features/report"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var typesFormat string

var typesCmd = &cobra.Command{
	Use:   "types [report-type]",
	Short: "List report types and their columns",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTypes,
}

func init() {
	rootCmd.AddCommand(typesCmd)
	typesCmd.Flags().StringVar(&typesFormat, "format", "text", "Output format: text, yaml or json")
}

func runTypes(cmd *cobra.Command, args []string) error {
	defs := report.Definitions()
	if len(args) == 1 {
		def, err := report.Lookup(report.ReportType(args[0]))
		if err != nil {
			return err
		}
		defs = []*report.Definition{def}
	}

	out := cmd.OutOrStdout()
	switch typesFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(defs)
	case "text":
		for _, def := range defs {
			fmt.Fprintf(out, "%-22s %-28s scope=%s\n", def.Type, def.Title, def.Scope)
			if len(args) == 1 {
				for _, c := range def.Columns {
					fmt.Fprintf(out, "  %-24s %-24s default=%t\n", c.ID, c.Label, c.DefaultVisible)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q, use text, yaml or json", typesFormat)
	}
}
