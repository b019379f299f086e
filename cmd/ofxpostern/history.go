package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/ofxpostern/internal/config"
	"github.com/nao1215/ofxpostern/internal/database"
	"github.com/nao1215/ofxpostern/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [ofx-url]",
		Short: "Show previous scans stored in the database",
		Long: `History lists the scans saved by 'ofxpostern scan', newest first.

Without a URL every stored scan is listed. Use --id to print a stored
report again in any output format.

Examples:
  # List all stored scans
  ofxpostern history

  # List the scans of one server
  ofxpostern history https://ofx.example.com/ofx/process.ofx

  # Print scan 12 as Markdown
  ofxpostern history --id 12 --markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("id", "i", 0,
		"Print the stored report with this ID (use the list to see available IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Print the report in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the report in Markdown format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the response cache and scan history")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	var target string
	if len(args) > 0 {
		target = args[0]
		if err := config.ValidateTarget(target); err != nil {
			return err
		}
	}

	// A missing database means nothing was saved yet.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No scans found in the database.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'ofxpostern scan <ofx-url>' to scan a server.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if id != 0 {
		cfg := config.NewConfig()
		cfg.JSONReport = jsonOutput
		cfg.MarkdownReport = markdownOutput
		cfg.Verbose = getVerboseFlag(cmd)
		return showStoredReport(ctx, db, id, newReportWriter(cfg, out))
	}
	return listScanHistory(ctx, db, target, out)
}

// showStoredReport renders the report saved under id.
func showStoredReport(ctx context.Context, db *database.ResponseDB, id int64, w report.Writer) error {
	r, err := db.GetScanReport(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load scan report: %w", err)
	}
	if r == nil {
		return fmt.Errorf("no scan report with ID %d", id)
	}
	_, err = w.Write(r)
	return err
}

// listScanHistory prints one line per stored scan of target, or of all
// targets when target is empty.
func listScanHistory(ctx context.Context, db *database.ResponseDB, target string, out io.Writer) error {
	reports, err := db.ListScanReports(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		if target == "" {
			fmt.Fprintln(out, "No scans found in the database.")
		} else {
			fmt.Fprintf(out, "No scan history found for %s\n", target)
		}
		fmt.Fprintln(out, "\nUse 'ofxpostern scan <ofx-url>' to scan a server.")
		return nil
	}

	if target == "" {
		fmt.Fprintf(out, "Scan history (%d scans):\n\n", len(reports))
		fmt.Fprintf(out, "  %-6s  %-20s  %-12s  %s\n", "ID", "Date", "Tests", "Target")
	} else {
		fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", target, len(reports))
		fmt.Fprintf(out, "  %-6s  %-20s  %s\n", "ID", "Date", "Tests")
	}
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, meta := range reports {
		tests := fmt.Sprintf("P:%d F:%d", meta.Passed, meta.Failed)
		date := meta.Timestamp.Local().Format("2006-01-02 15:04:05")
		if target == "" {
			fmt.Fprintf(out, "  %-6d  %-20s  %-12s  %s\n", meta.ID, date, tests, meta.Target)
			continue
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %s\n", meta.ID, date, tests)
	}

	fmt.Fprintln(out, "\nUse 'ofxpostern history --id <id>' to print a stored report.")
	return nil
}
