// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForTemplateLoad returns hints for template decoding errors.
func ForTemplateLoad() string {
	return format("use a PNG or JPEG file; set --template or template: in the config")
}

// ForFontLoad returns hints for font loading errors.
func ForFontLoad() string {
	return format("use a .ttf or .otf file; set --font or font.path in the config")
}

// ForTable returns hints for unreadable name tables.
func ForTable() string {
	return format("supported formats: .xlsx, .csv; set --table or input.table in the config")
}

// ForColumnNotFound suggests the headers found in the table.
func ForColumnNotFound(available []string) string {
	if len(available) == 0 {
		return format("the table has no header row")
	}
	return format("set --column to one of: " + strings.Join(available, ", "))
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-certgen/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-certgen") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTextOverflow returns hints for names that do not fit the text box.
func ForTextOverflow() string {
	return format("lower --font-size, widen --box-width, or drop --strict-fit")
}

// ForTimeout returns a hint about increasing the per-certificate timeout.
func ForTimeout() string {
	return format("for large templates, raise --timeout")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
