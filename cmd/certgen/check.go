package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	certgen "github.com/alnah/go-certgen"
	"github.com/alnah/go-certgen/internal/config"
	"github.com/alnah/go-certgen/internal/fileutil"
)

// ErrCheckFailed is returned when at least one check did not pass.
var ErrCheckFailed = errors.New("check failed")

// checkResult is one row of the check report.
type checkResult struct {
	name   string
	detail string
	err    error
}

// runCheck validates every input of a run without rendering anything.
// All checks run even after one fails so the report is complete.
func runCheck(_ context.Context, flags *generateFlags, env *Environment) error {
	warnUnknownEnvVars(env.Stderr)

	cfg, err := resolveConfig(flags, loadEnvConfig())
	if err != nil {
		return err
	}

	results := collectChecks(cfg)

	var failed []error
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r.err)
		}
	}

	if !flags.common.quiet || len(failed) > 0 {
		fmt.Fprintln(env.Stdout, renderChecks(results))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %w", ErrCheckFailed, errors.Join(failed...))
	}
	return nil
}

// collectChecks runs each check in order.
func collectChecks(cfg *config.Config) []checkResult {
	var results []checkResult
	add := func(name, detail string, err error) {
		results = append(results, checkResult{name: name, detail: detail, err: err})
	}

	layout := buildLayout(cfg)
	add("layout", fmt.Sprintf("%dx%d at (%+d, %+d)", layout.BoxWidth, layout.BoxHeight, layout.OffsetX, layout.OffsetY), layout.Validate())

	_, err := parseLocale(cfg.Font.Locale)
	add("locale", cfg.Font.Locale, err)

	tmpl, err := certgen.LoadTemplate(cfg.Template)
	detail := cfg.Template
	if err == nil {
		b := tmpl.Bounds()
		detail = fmt.Sprintf("%s (%dx%d)", cfg.Template, b.Dx(), b.Dy())
		if !layout.TextBox(b).In(b) {
			err = fmt.Errorf("%w: text box lies outside the %dx%d template", certgen.ErrInvalidTextBox, b.Dx(), b.Dy())
		}
	}
	add("template", detail, err)

	_, err = certgen.LoadFont(cfg.Font.Path)
	add("font", cfg.Font.Path, err)

	names, err := certgen.ReadNames(cfg.Input.Table, certgen.TableOptions{Sheet: cfg.Input.Sheet, Column: cfg.Input.Column})
	detail = cfg.Input.Table
	if err == nil {
		prepared := certgen.PrepareNames(names, nil)
		detail = fmt.Sprintf("%s (%d names from %d rows)", cfg.Input.Table, len(prepared.Names), len(names))
		if len(prepared.Names) == 0 {
			err = fmt.Errorf("%w: %s", ErrNoNames, cfg.Input.Table)
		}
	}
	add("table", detail, err)

	created, err := prepareOutputDir(cfg.Output.Dir)
	if created {
		if _, rmErr := fileutil.RemoveDirIfEmpty(cfg.Output.Dir); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	add("output", cfg.Output.Dir, err)

	return results
}

// renderChecks renders the check report table.
func renderChecks(results []checkResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Check", "Status", "Detail"})
	for _, r := range results {
		status := "ok"
		detail := r.detail
		if r.err != nil {
			status = "FAIL"
			detail = r.err.Error()
		}
		tw.AppendRow(table.Row{r.name, status, detail})
	}
	return tw.Render()
}
