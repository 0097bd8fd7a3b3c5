package main

import (
	"errors"
	"os"

	certgen "github.com/alnah/go-certgen"
	"github.com/alnah/go-certgen/internal/config"
)

// Exit codes for the certgen CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
// Individual certificate failures do not change the exit code.
const (
	ExitSuccess        = 0 // Run completed, failures (if any) are in the error log
	ExitGeneral        = 1 // General/unexpected error
	ExitUsage          = 2 // Invalid flags, config, or validation
	ExitIO             = 3 // Template, font, table or combined document unreadable/unwritable
	ExitNoCertificates = 4 // Nothing was generated
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Nothing generated (exit 4)
	if errors.Is(err, certgen.ErrNothingToMerge) ||
		errors.Is(err, ErrNoNames) {
		return ExitNoCertificates
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidFlags) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigTooLarge) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, certgen.ErrInvalidFontSize) ||
		errors.Is(err, certgen.ErrInvalidTextBox) ||
		errors.Is(err, certgen.ErrInvalidColor) ||
		errors.Is(err, certgen.ErrUnsupportedTable) ||
		errors.Is(err, certgen.ErrColumnNotFound) ||
		errors.Is(err, certgen.ErrSheetNotFound) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, certgen.ErrTemplateLoad) ||
		errors.Is(err, certgen.ErrFontLoad) ||
		errors.Is(err, certgen.ErrReadTable) ||
		errors.Is(err, certgen.ErrMergeRead) ||
		errors.Is(err, certgen.ErrMergeWrite) ||
		errors.Is(err, ErrOutputDir) {
		return ExitIO
	}

	return ExitGeneral
}
