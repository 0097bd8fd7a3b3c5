package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	certgen "github.com/alnah/go-certgen"
	"github.com/alnah/go-certgen/internal/hints"
)

// runSummary gathers what the end-of-run report shows.
type runSummary struct {
	rows       int
	names      certgen.PreparedNames
	counts     certgen.Summary
	failed     []certgen.Result
	merge      *certgen.MergeReport
	mergeErr   error
	errorLog   string
	logKept    bool
	outputDir  string
	keepSingle bool
}

// renderCounts renders the counts table.
func renderCounts(s runSummary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Result", "Count"})
	tw.AppendRow(table.Row{"Rows read", strconv.Itoa(s.rows)})
	tw.AppendRow(table.Row{"Empty skipped", strconv.Itoa(s.names.Empty)})
	tw.AppendRow(table.Row{"Duplicates dropped", strconv.Itoa(s.names.Duplicates)})
	tw.AppendRow(table.Row{"Succeeded", strconv.Itoa(s.counts.Succeeded)})
	tw.AppendRow(table.Row{"Failed", strconv.Itoa(s.counts.Failed)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// printSummary writes the end-of-run report.
// Failures go to stderr even in quiet mode.
func printSummary(s runSummary, quiet bool, env *Environment) {
	for _, r := range s.failed {
		fmt.Fprintf(env.Stderr, "FAILED %s after %d attempt(s): %v%s\n", r.Name, r.Attempts, r.Err, failureHint(r.Err))
	}
	for _, err := range cleanupErrors(s.merge) {
		fmt.Fprintf(env.Stderr, "warning: cleanup: %v\n", err)
	}

	if quiet {
		return
	}

	fmt.Fprintln(env.Stdout, renderCounts(s))

	if s.merge != nil && s.mergeErr == nil {
		fmt.Fprintf(env.Stdout, "All certificates merged into %s (%d pages)\n", s.merge.Output, s.merge.Pages)
		if s.merge.DirRemoved {
			fmt.Fprintf(env.Stdout, "Output directory %s removed\n", s.outputDir)
		} else if s.keepSingle {
			fmt.Fprintf(env.Stdout, "Single certificates kept in %s\n", s.outputDir)
		}
	}

	if s.logKept {
		fmt.Fprintf(env.Stdout, "Errors occurred during certificate generation, see %s\n", s.errorLog)
	} else {
		fmt.Fprintln(env.Stdout, "No errors occurred during certificate generation!")
	}
}

// failureHint suggests a fix for common per-certificate failures.
func failureHint(err error) string {
	switch {
	case errors.Is(err, certgen.ErrTextOverflow):
		return hints.ForTextOverflow()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	default:
		return ""
	}
}

func cleanupErrors(r *certgen.MergeReport) []error {
	if r == nil {
		return nil
	}
	return r.CleanupErrors
}
