package certgen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxRetries is the number of attempts made per certificate.
const DefaultMaxRetries = 3

// TaskState is the lifecycle state of one render task.
type TaskState int

// Task states. Succeeded and Failed are terminal.
const (
	StatePending TaskState = iota
	StateRunning
	StateRetrying
	StateSucceeded
	StateFailed
)

// String returns the lowercase state name.
func (s TaskState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s TaskState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ErrorLogger receives one entry per failed attempt.
// Implementations must be safe for concurrent use.
type ErrorLogger interface {
	Error(msg string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Error(string, ...any) {}

// Result is the outcome of one render task.
type Result struct {
	Index    int // position in the input name list
	Name     string
	State    TaskState
	Attempts int
	Artifact Artifact
	Err      error // last attempt's error when Failed
	Duration time.Duration
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Workers     int           // pool size; 0 = ResolvePoolSize(0)
	MaxRetries  int           // total attempts per task; 0 = DefaultMaxRetries
	TaskTimeout time.Duration // per attempt; 0 = no timeout
	Log         ErrorLogger   // nil discards
	Progress    func(Result)  // called once per terminal task, may run concurrently
}

func (o BatchOptions) withDefaults() BatchOptions {
	o.Workers = ResolvePoolSize(o.Workers)
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Log == nil {
		o.Log = discardLogger{}
	}
	return o
}

// RunBatch renders every name on a fixed-size worker pool.
// Results are returned in input order regardless of completion order.
// Task failures never abort the batch.
func RunBatch(ctx context.Context, r Renderer, names []string, opts BatchOptions) []Result {
	if len(names) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	workers := opts.Workers
	if workers > len(names) {
		workers = len(names)
	}

	results := make([]Result, len(names))
	for i, name := range names {
		results[i] = Result{Index: i, Name: name, State: StatePending}
	}

	var progressMu sync.Mutex
	report := func(res Result) {
		if opts.Progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		opts.Progress(res)
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range names {
		if ctx.Err() != nil {
			results[i].State = StateFailed
			results[i].Err = ctx.Err()
			report(results[i])
			continue
		}

		g.Go(func() error {
			runTask(ctx, r, &results[i], opts)
			report(results[i])
			return nil
		})
	}

	_ = g.Wait() // tasks never return errors
	return results
}

// runTask drives one task through Running/Retrying until it is terminal.
func runTask(ctx context.Context, r Renderer, res *Result, opts BatchOptions) {
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	for res.Attempts < opts.MaxRetries {
		if err := ctx.Err(); err != nil {
			res.State = StateFailed
			res.Err = err
			return
		}

		res.State = StateRunning
		res.Attempts++

		art, err := attempt(ctx, r, res.Name, opts.TaskTimeout)
		if err == nil {
			res.State = StateSucceeded
			res.Artifact = art
			res.Err = nil
			return
		}

		res.Err = err
		opts.Log.Error("certificate attempt failed",
			"name", res.Name,
			"attempt", res.Attempts,
			"of", opts.MaxRetries,
			"err", err,
		)
		res.State = StateRetrying
	}

	res.State = StateFailed
	opts.Log.Error("certificate generation failed",
		"name", res.Name,
		"attempts", res.Attempts,
		"err", res.Err,
	)
}

// attempt runs one render, bounded by timeout when positive.
func attempt(ctx context.Context, r Renderer, name string, timeout time.Duration) (Artifact, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.Render(ctx, name)
}

// Summary counts terminal task outcomes.
type Summary struct {
	Succeeded int
	Failed    int
}

// Summarize tallies succeeded and failed results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.State {
		case StateSucceeded:
			s.Succeeded++
		case StateFailed:
			s.Failed++
		}
	}
	return s
}

// Succeeded returns the succeeded results, in input order.
func Succeeded(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.State == StateSucceeded {
			out = append(out, r)
		}
	}
	return out
}

// Failed returns the failed results, in input order.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.State == StateFailed {
			out = append(out, r)
		}
	}
	return out
}
