package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/automaxprocs/maxprocs"

	certgen "github.com/alnah/go-certgen"
	"github.com/alnah/go-certgen/internal/errlog"
)

// runGenerate renders every certificate, merges them and cleans up.
// Individual certificate failures are logged and do not fail the run;
// startup and merge-write failures do.
func runGenerate(ctx context.Context, flags *generateFlags, env *Environment) error {
	warnUnknownEnvVars(env.Stderr)

	cfg, err := resolveConfig(flags, loadEnvConfig())
	if err != nil {
		return err
	}

	undo := configureMaxProcs(flags.common.verbose, env)
	defer undo()

	elog, err := errlog.Open(cfg.ErrorLog, env.NewRunID())
	if err != nil {
		return err
	}

	in, err := loadInputs(cfg)
	if err == nil {
		_, err = prepareOutputDir(cfg.Output.Dir)
	}
	if err != nil {
		elog.Error("startup failed", "err", err)
		_, _ = elog.Finish()
		return err
	}

	workers := certgen.ResolvePoolSize(cfg.Workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", workers)
	}

	faces := certgen.NewFacePool(in.font, in.layout.FontSize, workers)
	defer faces.Close()

	renderer, err := certgen.NewCertificateRenderer(in.template, faces, in.layout, cfg.Output.Dir)
	if err != nil {
		_, _ = elog.Finish()
		return err
	}

	start := env.Now()
	progress := newProgress(env, len(in.names.Names), flags.common.quiet, flags.common.verbose)
	results := certgen.RunBatch(ctx, renderer, in.names.Names, certgen.BatchOptions{
		Workers:     workers,
		MaxRetries:  cfg.Retry.MaxRetries,
		TaskTimeout: in.timeout,
		Log:         elog,
		Progress:    progress.Done,
	})
	progress.Finish()

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Time taken to generate certificates: %.2f seconds\n", env.Now().Sub(start).Seconds())
	}

	report, mergeErr := certgen.Merge(certgen.NewPDFWriter(), results, certgen.MergeOptions{
		Output:      in.merged,
		OutputDir:   cfg.Output.Dir,
		KeepSingles: cfg.Output.KeepSingles,
	})
	if mergeErr != nil && !errors.Is(mergeErr, certgen.ErrNothingToMerge) {
		elog.Error("merge failed", "output", in.merged, "err", mergeErr)
	}

	logKept, logErr := elog.Finish()
	if logErr != nil {
		fmt.Fprintf(env.Stderr, "warning: %v\n", logErr)
	}

	printSummary(runSummary{
		rows:       in.rows,
		names:      in.names,
		counts:     certgen.Summarize(results),
		failed:     certgen.Failed(results),
		merge:      report,
		mergeErr:   mergeErr,
		errorLog:   elog.Path(),
		logKept:    logKept,
		outputDir:  cfg.Output.Dir,
		keepSingle: cfg.Output.KeepSingles,
	}, flags.common.quiet, env)

	if mergeErr != nil {
		return mergeErr
	}
	return ctx.Err()
}

// configureMaxProcs sets GOMAXPROCS from the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func configureMaxProcs(verbose bool, env *Environment) func() {
	logger := func(string, ...interface{}) {}
	if verbose {
		logger = func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}
	}
	undo, _ := maxprocs.Set(maxprocs.Logger(logger))
	if undo == nil {
		return func() {}
	}
	return undo
}
