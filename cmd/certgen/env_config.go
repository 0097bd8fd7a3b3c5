package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-certgen/internal/config"
)

// envPrefix namespaces the CLI's environment variables.
const envPrefix = "CERTGEN_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
// Empty strings and zero values mean "not set".
type envConfig struct {
	ConfigPath  string // CERTGEN_CONFIG: config file path
	Table       string // CERTGEN_TABLE: name table
	Column      string // CERTGEN_COLUMN: name column header
	Template    string // CERTGEN_TEMPLATE: template image
	Font        string // CERTGEN_FONT: font file
	OutputDir   string // CERTGEN_OUTPUT_DIR: per-name output directory
	Merged      string // CERTGEN_MERGED: combined PDF path
	ErrorLog    string // CERTGEN_ERROR_LOG: error log path
	Timeout     string // CERTGEN_TIMEOUT: per-attempt timeout
	Workers     int    // CERTGEN_WORKERS: parallel workers
	MaxRetries  int    // CERTGEN_MAX_RETRIES: attempts per certificate
	KeepSingles *bool  // CERTGEN_KEEP_SINGLES: keep per-name files
}

// knownEnvVars lists all recognized CERTGEN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"CERTGEN_CONFIG":       true,
	"CERTGEN_TABLE":        true,
	"CERTGEN_COLUMN":       true,
	"CERTGEN_TEMPLATE":     true,
	"CERTGEN_FONT":         true,
	"CERTGEN_OUTPUT_DIR":   true,
	"CERTGEN_MERGED":       true,
	"CERTGEN_ERROR_LOG":    true,
	"CERTGEN_TIMEOUT":      true,
	"CERTGEN_WORKERS":      true,
	"CERTGEN_MAX_RETRIES":  true,
	"CERTGEN_KEEP_SINGLES": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and booleans are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("CERTGEN_CONFIG"),
		Table:      os.Getenv("CERTGEN_TABLE"),
		Column:     os.Getenv("CERTGEN_COLUMN"),
		Template:   os.Getenv("CERTGEN_TEMPLATE"),
		Font:       os.Getenv("CERTGEN_FONT"),
		OutputDir:  os.Getenv("CERTGEN_OUTPUT_DIR"),
		Merged:     os.Getenv("CERTGEN_MERGED"),
		ErrorLog:   os.Getenv("CERTGEN_ERROR_LOG"),
		Timeout:    os.Getenv("CERTGEN_TIMEOUT"),
	}

	if workers := os.Getenv("CERTGEN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if retries := os.Getenv("CERTGEN_MAX_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil && r > 0 {
			cfg.MaxRetries = r
		}
	}

	if keep := os.Getenv("CERTGEN_KEEP_SINGLES"); keep != "" {
		if b, err := strconv.ParseBool(keep); err == nil {
			cfg.KeepSingles = &b
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized CERTGEN_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment values over the loaded config.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Input.Table, env.Table)
	setString(&cfg.Input.Column, env.Column)
	setString(&cfg.Template, env.Template)
	setString(&cfg.Font.Path, env.Font)
	setString(&cfg.Output.Dir, env.OutputDir)
	setString(&cfg.Output.Merged, env.Merged)
	setString(&cfg.ErrorLog, env.ErrorLog)
	setString(&cfg.Retry.TaskTimeout, env.Timeout)

	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.MaxRetries > 0 {
		cfg.Retry.MaxRetries = env.MaxRetries
	}
	if env.KeepSingles != nil {
		cfg.Output.KeepSingles = *env.KeepSingles
	}
}

// setString overwrites dst when v is non-empty.
func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
