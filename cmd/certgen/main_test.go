package main

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/goregular"
)

// testEnv returns an Environment writing to buffers.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Environment{
		Now:        func() time.Time { return now },
		Stdout:     &stdout,
		Stderr:     &stderr,
		IsTerminal: func() bool { return false },
		NewRunID:   func() string { return "test-run" },
	}, &stdout, &stderr
}

// fixture holds the input files of one test run.
type fixture struct {
	dir      string
	table    string
	template string
	font     string
	out      string
	errorLog string
}

// newFixture writes a template, a font and a CSV table with the given rows.
func newFixture(t *testing.T, rows ...string) fixture {
	t.Helper()

	dir := t.TempDir()
	fx := fixture{
		dir:      dir,
		table:    filepath.Join(dir, "names.csv"),
		template: filepath.Join(dir, "template.png"),
		font:     filepath.Join(dir, "font.ttf"),
		out:      filepath.Join(dir, "certs"),
		errorLog: filepath.Join(dir, "errors.log"),
	}

	if err := imaging.Save(imaging.New(600, 400, color.White), fx.template); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fx.font, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	csv := "Name\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(fx.table, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return fx
}

// args returns the flags pointing a run at the fixture.
func (fx fixture) args(extra ...string) []string {
	base := []string{
		"--table", fx.table,
		"--column", "Name",
		"--template", fx.template,
		"--font", fx.font,
		"--font-size", "24",
		"--box-width", "300",
		"--box-height", "60",
		"--offset-x", "-150",
		"--offset-y", "30",
		"--output-dir", fx.out,
		"--error-log", fx.errorLog,
		"--workers", "2",
	}
	return append(base, extra...)
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	if code := run(context.Background(), []string{"version"}, env); code != ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "certgen ") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"help"}, "Commands:"},
		{[]string{"help", "generate"}, "certgen generate"},
		{[]string{"help", "check"}, "certgen check"},
	}

	for _, tt := range tests {
		env, stdout, _ := testEnv()
		if code := run(context.Background(), tt.args, env); code != ExitSuccess {
			t.Errorf("%v: exit code = %d", tt.args, code)
		}
		if !strings.Contains(stdout.String(), tt.want) {
			t.Errorf("%v: stdout missing %q", tt.args, tt.want)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"render"}},
		{"unknown flag", []string{"--nope"}},
		{"positional argument", []string{"generate", "names.csv"}},
		{"bad flag value", []string{"check", "--workers", "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := testEnv()
			if code := run(context.Background(), tt.args, env); code != ExitUsage {
				t.Errorf("exit code = %d, want %d; stderr:\n%s", code, ExitUsage, stderr)
			}
		})
	}
}

func TestRun_FlagHelp(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv()
	if code := run(context.Background(), []string{"generate", "--help"}, env); code != ExitSuccess {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "certgen generate") {
		t.Errorf("usage not printed: %q", stderr.String())
	}
}
