package certgen

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeRenderer fails each name a fixed number of times before succeeding.
type fakeRenderer struct {
	mu       sync.Mutex
	failures map[string]int // remaining failures per name; -1 = always
	delay    func(name string) time.Duration
	calls    map[string]int
	active   atomic.Int32
	peak     atomic.Int32
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{failures: map[string]int{}, calls: map[string]int{}}
}

func (f *fakeRenderer) Render(ctx context.Context, name string) (Artifact, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.delay != nil {
		select {
		case <-time.After(f.delay(name)):
		case <-ctx.Done():
			return Artifact{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++

	switch left := f.failures[name]; {
	case left < 0:
		return Artifact{}, fmt.Errorf("render %s: boom", name)
	case left > 0:
		f.failures[name] = left - 1
		return Artifact{}, fmt.Errorf("render %s: transient", name)
	}
	return Artifact{Name: name, DocumentPath: name + ".pdf"}, nil
}

func (f *fakeRenderer) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// countingLogger records error log entries.
type countingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *countingLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *countingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func TestRunBatch_AllSucceed(t *testing.T) {
	t.Parallel()

	names := []string{"Alice Smith", "Bob Jones", "Carol White"}
	log := &countingLogger{}

	results := RunBatch(context.Background(), newFakeRenderer(), names, BatchOptions{Workers: 2, Log: log})

	if len(results) != len(names) {
		t.Fatalf("got %d results, want %d", len(results), len(names))
	}
	for i, r := range results {
		if r.Index != i || r.Name != names[i] {
			t.Errorf("results[%d] = {%d %q}, want {%d %q}", i, r.Index, r.Name, i, names[i])
		}
		if r.State != StateSucceeded || r.Attempts != 1 || r.Err != nil {
			t.Errorf("results[%d] = state %s, attempts %d, err %v", i, r.State, r.Attempts, r.Err)
		}
	}
	if log.count() != 0 {
		t.Errorf("logged %d entries, want 0", log.count())
	}
	if s := Summarize(results); s != (Summary{Succeeded: 3}) {
		t.Errorf("Summarize = %+v", s)
	}
}

func TestRunBatch_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		failures     int
		maxRetries   int
		wantState    TaskState
		wantAttempts int
		wantLogLines int
	}{
		{"succeeds first try", 0, 3, StateSucceeded, 1, 0},
		{"succeeds on second attempt", 1, 3, StateSucceeded, 2, 1},
		{"succeeds on last attempt", 2, 3, StateSucceeded, 3, 2},
		{"always fails", -1, 3, StateFailed, 3, 4},
		{"always fails single attempt", -1, 1, StateFailed, 1, 2},
		{"always fails five attempts", -1, 5, StateFailed, 5, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newFakeRenderer()
			r.failures["Alice"] = tt.failures
			log := &countingLogger{}

			results := RunBatch(context.Background(), r, []string{"Alice"}, BatchOptions{
				Workers:    1,
				MaxRetries: tt.maxRetries,
				Log:        log,
			})

			got := results[0]
			if got.State != tt.wantState {
				t.Errorf("State = %s, want %s", got.State, tt.wantState)
			}
			if got.Attempts != tt.wantAttempts {
				t.Errorf("Attempts = %d, want %d", got.Attempts, tt.wantAttempts)
			}
			if r.callCount("Alice") != tt.wantAttempts {
				t.Errorf("Render called %d times, want %d", r.callCount("Alice"), tt.wantAttempts)
			}
			if log.count() != tt.wantLogLines {
				t.Errorf("logged %d entries, want %d", log.count(), tt.wantLogLines)
			}
			if tt.wantState == StateFailed && got.Err == nil {
				t.Error("failed result has nil Err")
			}
		})
	}
}

func TestRunBatch_DefaultMaxRetries(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	r.failures["Alice"] = -1

	results := RunBatch(context.Background(), r, []string{"Alice"}, BatchOptions{Workers: 1})
	if results[0].Attempts != DefaultMaxRetries {
		t.Errorf("Attempts = %d, want %d", results[0].Attempts, DefaultMaxRetries)
	}
}

func TestRunBatch_FailureIsolated(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	r.failures["Bob"] = -1

	results := RunBatch(context.Background(), r, []string{"Alice", "Bob", "Carol"}, BatchOptions{Workers: 3})

	want := []TaskState{StateSucceeded, StateFailed, StateSucceeded}
	for i, res := range results {
		if res.State != want[i] {
			t.Errorf("results[%d].State = %s, want %s", i, res.State, want[i])
		}
	}

	var ok []string
	for _, res := range Succeeded(results) {
		ok = append(ok, res.Name)
	}
	if !slices.Equal(ok, []string{"Alice", "Carol"}) {
		t.Errorf("Succeeded = %v", ok)
	}
	if failed := Failed(results); len(failed) != 1 || failed[0].Name != "Bob" {
		t.Errorf("Failed = %+v", failed)
	}
}

func TestRunBatch_InputOrderPreserved(t *testing.T) {
	t.Parallel()

	names := []string{"n0", "n1", "n2", "n3", "n4", "n5"}
	r := newFakeRenderer()
	// Earlier names finish last.
	r.delay = func(name string) time.Duration {
		i := slices.Index(names, name)
		return time.Duration(len(names)-i) * 5 * time.Millisecond
	}

	var completed []string
	results := RunBatch(context.Background(), r, names, BatchOptions{
		Workers: len(names),
		Progress: func(res Result) {
			completed = append(completed, res.Name)
		},
	})

	for i, res := range results {
		if res.Name != names[i] {
			t.Errorf("results[%d].Name = %q, want %q", i, res.Name, names[i])
		}
	}
	if len(completed) != len(names) {
		t.Fatalf("progress called %d times, want %d", len(completed), len(names))
	}
	if slices.Equal(completed, names) {
		t.Log("tasks happened to complete in input order")
	}
}

func TestRunBatch_WorkerLimit(t *testing.T) {
	t.Parallel()

	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("name-%d", i)
	}
	r := newFakeRenderer()
	r.delay = func(string) time.Duration { return 5 * time.Millisecond }

	RunBatch(context.Background(), r, names, BatchOptions{Workers: 3})

	if peak := r.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want at most 3", peak)
	}
}

func TestRunBatch_TaskTimeout(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	r.delay = func(string) time.Duration { return time.Second }

	results := RunBatch(context.Background(), r, []string{"Slow"}, BatchOptions{
		Workers:     1,
		MaxRetries:  2,
		TaskTimeout: 10 * time.Millisecond,
	})

	got := results[0]
	if got.State != StateFailed || got.Attempts != 2 {
		t.Errorf("result = state %s, attempts %d; want failed after 2", got.State, got.Attempts)
	}
	if !errors.Is(got.Err, context.DeadlineExceeded) {
		t.Errorf("Err = %v, want context.DeadlineExceeded", got.Err)
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newFakeRenderer()
	results := RunBatch(ctx, r, []string{"Alice", "Bob"}, BatchOptions{Workers: 1})

	for i, res := range results {
		if res.State != StateFailed {
			t.Errorf("results[%d].State = %s, want failed", i, res.State)
		}
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, res.Err)
		}
	}
	if r.callCount("Alice")+r.callCount("Bob") != 0 {
		t.Error("renderer called after cancellation")
	}
}

func TestRunBatch_Empty(t *testing.T) {
	t.Parallel()

	if got := RunBatch(context.Background(), newFakeRenderer(), nil, BatchOptions{}); got != nil {
		t.Errorf("RunBatch(nil) = %v, want nil", got)
	}
}

func TestTaskState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    TaskState
		name     string
		terminal bool
	}{
		{StatePending, "pending", false},
		{StateRunning, "running", false},
		{StateRetrying, "retrying", false},
		{StateSucceeded, "succeeded", true},
		{StateFailed, "failed", true},
		{TaskState(42), "TaskState(42)", false},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.state.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.name, got, tt.terminal)
		}
	}
}
