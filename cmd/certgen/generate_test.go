package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestGenerate_EndToEnd(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "alice smith", "  BOB jones  ", "", "Alice Smith")
	env, stdout, stderr := testEnv()

	code := run(context.Background(), fx.args(), env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr)
	}

	merged := filepath.Join(fx.dir, "all_certificates.pdf")
	data, err := os.ReadFile(merged)
	if err != nil {
		t.Fatalf("merged document: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("merged document is not a PDF")
	}

	if _, err := os.Stat(fx.out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output dir still exists after merge: %v", err)
	}
	if _, err := os.Stat(fx.errorLog); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error log exists after a clean run: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"Time taken to generate certificates",
		"All certificates merged into " + merged + " (2 pages)",
		"No errors occurred during certificate generation!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestGenerate_KeepSingles(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "carol white", "dave brown")
	env, _, stderr := testEnv()

	merged := filepath.Join(fx.dir, "combined.pdf")
	code := run(context.Background(), fx.args("--keep-singles", "--merged", merged), env)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr)
	}

	for _, name := range []string{"Carol_White", "Dave_Brown"} {
		for _, ext := range []string{".png", ".pdf"} {
			p := filepath.Join(fx.out, name+"_certificate"+ext)
			if _, err := os.Stat(p); err != nil {
				t.Errorf("single file %s: %v", p, err)
			}
		}
	}
	if _, err := os.Stat(merged); err != nil {
		t.Errorf("merged document: %v", err)
	}
}

func TestGenerate_Quiet(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "eve adams")
	env, stdout, _ := testEnv()

	if code := run(context.Background(), fx.args("--quiet"), env); code != ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet run wrote to stdout:\n%s", stdout)
	}
}

func TestGenerate_Verbose(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "frank lee", "grace hopper")
	env, _, stderr := testEnv()

	if code := run(context.Background(), fx.args("--verbose"), env); code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"Pool size: 2", "ok Frank Lee", "ok Grace Hopper"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestGenerate_AllFailStrictFit(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "maximilian longname")
	env, _, stderr := testEnv()

	code := run(context.Background(), fx.args("--strict-fit", "--box-width", "10", "--max-retries", "2"), env)
	if code != ExitNoCertificates {
		t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, ExitNoCertificates, stderr)
	}

	log, err := os.ReadFile(fx.errorLog)
	if err != nil {
		t.Fatalf("error log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(log), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("error log has %d lines, want 3 (2 attempts + final):\n%s", len(lines), log)
	}
	if !strings.Contains(string(log), "run=test-run") {
		t.Errorf("error log entries lack the run id:\n%s", log)
	}

	if !strings.Contains(stderr.String(), "FAILED Maximilian Longname after 2 attempt(s)") {
		t.Errorf("failure not reported:\n%s", stderr)
	}
	if !strings.Contains(stderr.String(), "hint:") {
		t.Errorf("overflow hint missing:\n%s", stderr)
	}
	if _, err := os.Stat(fx.out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("empty output dir left behind: %v", err)
	}
}

func TestGenerate_StartupErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rows  []string
		extra func(fx fixture) []string
		want  int
	}{
		{
			name:  "missing template",
			rows:  []string{"alice"},
			extra: func(fx fixture) []string { return []string{"--template", filepath.Join(fx.dir, "none.png")} },
			want:  ExitIO,
		},
		{
			name:  "missing font",
			rows:  []string{"alice"},
			extra: func(fx fixture) []string { return []string{"--font", filepath.Join(fx.dir, "none.ttf")} },
			want:  ExitIO,
		},
		{
			name:  "missing column",
			rows:  []string{"alice"},
			extra: func(fx fixture) []string { return []string{"--column", "Email"} },
			want:  ExitUsage,
		},
		{
			name:  "only empty names",
			rows:  []string{"", "  ", "*"},
			extra: func(fixture) []string { return nil },
			want:  ExitNoCertificates,
		},
		{
			name:  "bad color",
			rows:  []string{"alice"},
			extra: func(fixture) []string { return []string{"--color", "red"} },
			want:  ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fx := newFixture(t, tt.rows...)
			env, _, stderr := testEnv()

			code := run(context.Background(), fx.args(tt.extra(fx)...), env)
			if code != tt.want {
				t.Errorf("exit code = %d, want %d; stderr:\n%s", code, tt.want, stderr)
			}
			if _, err := os.Stat(filepath.Join(fx.dir, "all_certificates.pdf")); !errors.Is(err, os.ErrNotExist) {
				t.Error("merged document written after startup failure")
			}
		})
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "alice smith", "bob jones")
	env, _, _ := testEnv()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if code := run(ctx, fx.args(), env); code == ExitSuccess {
		t.Error("cancelled run exited 0")
	}
}

func TestGenerate_ScenarioWithEmptyRow(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, "alice smith", "  BOB jones  ", "")
	env, stdout, stderr := testEnv()

	if code := run(context.Background(), fx.args("--max-retries", "2"), env); code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr:\n%s", code, stderr)
	}

	out := stdout.String()
	counts := []struct {
		label string
		want  int
	}{
		{"Rows read", 3},
		{"Empty skipped", 1},
		{"Duplicates dropped", 0},
		{"Succeeded", 2},
		{"Failed", 0},
	}
	for _, c := range counts {
		re := regexp.MustCompile(regexp.QuoteMeta(c.label) + `[^0-9\n]+` + strconv.Itoa(c.want) + `[^0-9]`)
		if !re.MatchString(out) {
			t.Errorf("summary %q is not %d:\n%s", c.label, c.want, out)
		}
	}
	if !strings.Contains(out, "(2 pages)") {
		t.Errorf("stdout missing page count:\n%s", out)
	}
	if _, err := os.Stat(fx.errorLog); !errors.Is(err, os.ErrNotExist) {
		t.Error("empty row was logged as a failure")
	}
}
