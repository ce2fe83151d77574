package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"go-league/internal/features/export"
	"go-league/internal/features/report"

	"github.com/spf13/cobra"
)

var (
	runOrg       string
	runOrgName   string
	runSeason    string
	runFormat    string
	runOut       string
	runScope     string
	runUser      string
	runSort      string
	runDesc      bool
	runFilters   []string
	runColumns   []string
	runSummarize bool
)

var runCmd = &cobra.Command{
	Use:   "run <report-type>",
	Short: "Run a report and write the export",
	Long: `Run a report against the data store and write it as csv, html or xlsx.

With --out - the document is written to stdout. Filters are key=value pairs
using the same keys as the API: team, status, search, date_from, date_to.

Examples:
  reportctl run players --org org-1 --season s-1
  reportctl run outstanding --org org-1 --season s-1 --format xlsx --out ./exports
  reportctl run schedule --org org-1 --season s-1 --filter team=Hawks --sort event_date --out -`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runOrg, "org", "", "Organization id (required)")
	runCmd.Flags().StringVar(&runOrgName, "org-name", "", "Organization name for the export header")
	runCmd.Flags().StringVar(&runSeason, "season", "", "Season id")
	runCmd.Flags().StringVar(&runFormat, "format", "csv", "Export format: csv, html or xlsx")
	runCmd.Flags().StringVar(&runOut, "out", "", "Output directory, or - for stdout (default EXPORT_DIR)")
	runCmd.Flags().StringVar(&runScope, "scope-label", "", "Scope label for the export header")
	runCmd.Flags().StringVar(&runUser, "user", "reportctl", "Name stamped as the export author")
	runCmd.Flags().StringVar(&runSort, "sort", "", "Column to sort by")
	runCmd.Flags().BoolVar(&runDesc, "desc", false, "Sort descending")
	runCmd.Flags().StringSliceVar(&runFilters, "filter", nil, "Filter as key=value (repeatable)")
	runCmd.Flags().StringSliceVar(&runColumns, "columns", nil, "Only these columns, in display order")
	runCmd.Flags().BoolVar(&runSummarize, "summary", false, "Also print the email summary to stderr")
	_ = runCmd.MarkFlagRequired("org")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, err := export.ParseFormat(runFormat)
	if err != nil {
		return err
	}
	if format == export.FormatEmail {
		return fmt.Errorf("email is not a file format, use --summary")
	}

	req, err := buildRunRequest(report.ReportType(args[0]))
	if err != nil {
		return err
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	svc := report.NewReportService(e.store, e.logger)
	panel, err := svc.OpenPanel(ctx, req)
	if err != nil {
		return err
	}

	orgName := runOrgName
	if orgName == "" {
		orgName = runOrg
	}
	table := panel.ExportTable(report.StaticIdentity{Org: orgName, User: runUser}, runScope)
	doc, err := export.Render(format, table)
	if err != nil {
		return err
	}

	if runSummarize {
		email := export.RenderEmail(table)
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n%s\n", email.Subject, email.Body)
	}

	if runOut == "-" {
		_, err := cmd.OutOrStdout().Write(doc.Body)
		return err
	}
	dir := runOut
	if dir == "" {
		dir = e.cfg.ExportDir
	}
	if err := export.NewDirSink(dir).Deliver(ctx, export.Delivery{Document: doc}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows)\n", filepath.Join(dir, doc.Filename), len(table.Rows))
	return nil
}

func buildRunRequest(rt report.ReportType) (report.RunRequest, error) {
	req := report.RunRequest{
		ReportType: rt,
		SeasonID:   runSeason,
		OrgID:      runOrg,
		SortField:  runSort,
	}
	if runSort != "" {
		req.SortDir = report.SortAsc
		if runDesc {
			req.SortDir = report.SortDesc
		}
	}

	for _, f := range runFilters {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return req, fmt.Errorf("invalid filter %q, want key=value", f)
		}
		switch report.FilterKey(key) {
		case report.FilterTeam:
			req.Filters.Team = value
		case report.FilterStatus:
			req.Filters.Status = value
		case report.FilterSearch:
			req.Filters.Search = value
		case report.FilterDateFrom:
			req.Filters.DateFrom = value
		case report.FilterDateTo:
			req.Filters.DateTo = value
		default:
			return req, fmt.Errorf("%w: %s", report.ErrUnknownFilter, key)
		}
	}

	if len(runColumns) > 0 {
		def, err := report.Lookup(rt)
		if err != nil {
			return req, err
		}
		for _, id := range runColumns {
			if _, ok := def.Column(id); !ok {
				return req, fmt.Errorf("%w: %q for %s", report.ErrUnknownColumn, id, rt)
			}
		}
		req.Columns = runColumns
	}
	if runSort != "" {
		def, err := report.Lookup(rt)
		if err != nil {
			return req, err
		}
		if _, ok := def.Column(runSort); !ok {
			return req, fmt.Errorf("%w: %q for %s", report.ErrUnknownColumn, runSort, rt)
		}
	}
	return req, nil
}
