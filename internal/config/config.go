package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigTooLarge  = errors.New("config file too large")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// MaxConfigSize limits config input to prevent memory exhaustion (1MB).
const MaxConfigSize = 1 << 20

// Field length limits.
const (
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxColumnLength = 200  // Spreadsheet header
	MaxSheetLength  = 31   // Excel sheet name limit
	MaxLocaleLength = 35   // BCP 47 tag
	MaxColorLength  = 7    // "#RRGGBB"
)

// Defaults from the stock certificate kit.
const (
	DefaultTable      = "./fake_names.xlsx"
	DefaultColumn     = "Ad, soyad"
	DefaultTemplate   = "./template.png"
	DefaultFont       = "Noto.ttf"
	DefaultOutputDir  = "./certificates/"
	DefaultErrorLog   = "./errors.log"
	DefaultFontSize   = 80
	DefaultColor      = "#000000"
	DefaultMaxRetries = 3
	DefaultBoxWidth   = 500
	DefaultBoxHeight  = 100
	DefaultOffsetX    = 180
	DefaultOffsetY    = 100
)

// Config holds all configuration for a certificate run.
type Config struct {
	Input    InputConfig  `yaml:"input"`
	Template string       `yaml:"template"`
	Font     FontConfig   `yaml:"font"`
	Layout   LayoutConfig `yaml:"layout"`
	Output   OutputConfig `yaml:"output"`
	ErrorLog string       `yaml:"errorLog"`
	Retry    RetryConfig  `yaml:"retry"`
	Workers  int          `yaml:"workers"` // 0 = auto
}

// InputConfig defines where participant names come from.
type InputConfig struct {
	Table  string `yaml:"table"`  // .xlsx or .csv
	Sheet  string `yaml:"sheet"`  // empty = first sheet
	Column string `yaml:"column"` // header of the name column, empty = first column
}

// FontConfig defines the name font.
type FontConfig struct {
	Path   string  `yaml:"path"`
	Size   float64 `yaml:"size"`   // points at 72 DPI
	Color  string  `yaml:"color"`  // "#RRGGBB"
	Locale string  `yaml:"locale"` // title-casing locale, e.g. "tr"; empty = neutral
}

// LayoutConfig places the text box relative to the template center.
type LayoutConfig struct {
	BoxWidth  int  `yaml:"boxWidth"`
	BoxHeight int  `yaml:"boxHeight"`
	OffsetX   int  `yaml:"offsetX"`   // right of center
	OffsetY   int  `yaml:"offsetY"`   // above center
	StrictFit bool `yaml:"strictFit"` // fail names that overflow the box
}

// OutputConfig defines generated files.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Merged      string `yaml:"merged"` // empty = all_certificates.pdf next to dir
	KeepSingles bool   `yaml:"keepSingles"`
}

// RetryConfig defines per-certificate retry behavior.
type RetryConfig struct {
	MaxRetries  int    `yaml:"maxRetries"`  // total attempts per certificate
	TaskTimeout string `yaml:"taskTimeout"` // per attempt, e.g. "30s"; empty = none
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Table:  DefaultTable,
			Column: DefaultColumn,
		},
		Template: DefaultTemplate,
		Font: FontConfig{
			Path:  DefaultFont,
			Size:  DefaultFontSize,
			Color: DefaultColor,
		},
		Layout: LayoutConfig{
			BoxWidth:  DefaultBoxWidth,
			BoxHeight: DefaultBoxHeight,
			OffsetX:   DefaultOffsetX,
			OffsetY:   DefaultOffsetY,
		},
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
		ErrorLog: DefaultErrorLog,
		Retry: RetryConfig{
			MaxRetries: DefaultMaxRetries,
		},
	}
}

// Validate checks value ranges and field lengths.
// Called automatically by LoadConfig, and again by the CLI after flags and
// environment variables are merged.
func (c *Config) Validate() error {
	paths := []struct {
		name  string
		value string
	}{
		{"input.table", c.Input.Table},
		{"template", c.Template},
		{"font.path", c.Font.Path},
		{"output.dir", c.Output.Dir},
		{"output.merged", c.Output.Merged},
		{"errorLog", c.ErrorLog},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.name, p.value, MaxPathLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("input.sheet", c.Input.Sheet, MaxSheetLength); err != nil {
		return err
	}
	if err := validateFieldLength("input.column", c.Input.Column, MaxColumnLength); err != nil {
		return err
	}
	if err := validateFieldLength("font.locale", c.Font.Locale, MaxLocaleLength); err != nil {
		return err
	}
	if err := validateFieldLength("font.color", c.Font.Color, MaxColorLength); err != nil {
		return err
	}

	if c.Font.Size <= 0 {
		return fmt.Errorf("%w: font.size must be positive, got %.1f", ErrInvalidValue, c.Font.Size)
	}
	if c.Layout.BoxWidth <= 0 || c.Layout.BoxHeight <= 0 {
		return fmt.Errorf("%w: layout box must be positive, got %dx%d", ErrInvalidValue, c.Layout.BoxWidth, c.Layout.BoxHeight)
	}
	if c.Retry.MaxRetries < 1 {
		return fmt.Errorf("%w: retry.maxRetries must be at least 1, got %d", ErrInvalidValue, c.Retry.MaxRetries)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidValue, c.Workers)
	}
	if _, err := c.TaskTimeout(); err != nil {
		return err
	}

	if c.Output.Merged != "" && c.Output.Dir != "" && !c.Output.KeepSingles {
		if isInside(c.Output.Merged, c.Output.Dir) {
			return fmt.Errorf("%w: output.merged %q is inside output.dir, which is removed after merging", ErrInvalidValue, c.Output.Merged)
		}
	}

	return nil
}

// TaskTimeout parses retry.taskTimeout. Empty means no timeout.
func (c *Config) TaskTimeout() (time.Duration, error) {
	if c.Retry.TaskTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Retry.TaskTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: retry.taskTimeout %q: %v", ErrInvalidValue, c.Retry.TaskTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: retry.taskTimeout must not be negative, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// isInside reports whether path lies within dir.
func isInside(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their defaults.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults, rejecting unknown fields.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxConfigSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), MaxConfigSize)
	}

	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths returns the candidate files for a config name, in lookup order.
// Tries the current directory, then ~/.config/go-certgen/, with .yaml and .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-certgen", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
