package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	certgen "github.com/alnah/go-certgen"
)

// progressThrottle limits redraws on fast batches.
const progressThrottle = 65 * time.Millisecond

// progressReporter observes terminal task results.
type progressReporter interface {
	Done(res certgen.Result)
	Finish()
}

// newProgress picks a reporter: a bar on terminals, one line per result in
// verbose mode, nothing otherwise.
func newProgress(env *Environment, total int, quiet, verbose bool) progressReporter {
	if quiet {
		return noProgress{}
	}
	if verbose {
		return &lineProgress{w: env.Stderr, total: total}
	}
	if env.IsTerminal != nil && env.IsTerminal() {
		return &barProgress{bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(env.Stderr),
			progressbar.OptionSetDescription("Generating certificates"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(progressThrottle),
			progressbar.OptionClearOnFinish(),
		)}
	}
	return noProgress{}
}

type noProgress struct{}

func (noProgress) Done(certgen.Result) {}
func (noProgress) Finish() {}

type barProgress struct {
	bar *progressbar.ProgressBar
}

func (p *barProgress) Done(certgen.Result) { _ = p.bar.Add(1) }
func (p *barProgress) Finish() { _ = p.bar.Finish() }

// lineProgress prints one line per finished certificate.
// RunBatch serializes progress callbacks, so no locking is needed.
type lineProgress struct {
	w     io.Writer
	total int
	done  int
}

func (p *lineProgress) Done(res certgen.Result) {
	p.done++
	status := "ok"
	if res.State != certgen.StateSucceeded {
		status = "FAILED"
	}
	fmt.Fprintf(p.w, "[%d/%d] %s %s (%s, %d attempt(s))\n",
		p.done, p.total, status, res.Name, res.Duration.Round(time.Millisecond), res.Attempts)
}

func (p *lineProgress) Finish() {}
