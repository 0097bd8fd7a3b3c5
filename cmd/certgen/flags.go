package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// inputFlags holds name table flags.
type inputFlags struct {
	table  string
	sheet  string
	column string
}

// fontFlags holds font flags.
type fontFlags struct {
	path   string
	size   float64
	color  string
	locale string
}

// layoutFlags holds text box placement flags.
type layoutFlags struct {
	boxWidth  int
	boxHeight int
	offsetX   int
	offsetY   int
	strictFit bool
}

// outputFlags holds generated file flags.
type outputFlags struct {
	dir         string
	merged      string
	errorLog    string
	keepSingles bool
}

// runFlags holds pool and retry flags.
type runFlags struct {
	workers    int
	maxRetries int
	timeout    string
}

// generateFlags holds all flags for the generate and check commands.
type generateFlags struct {
	common   commonFlags
	template string
	input    inputFlags
	font     fontFlags
	layout   layoutFlags
	output   outputFlags
	run      runFlags

	// changed reports whether a flag was set on the command line.
	// Zero is a valid offset, so values alone cannot tell.
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-certificate results")
}

// addInputFlags adds name table flags to a FlagSet.
func addInputFlags(fs *flag.FlagSet, f *inputFlags) {
	fs.StringVar(&f.table, "table", "", "name table (.xlsx or .csv)")
	fs.StringVar(&f.sheet, "sheet", "", "spreadsheet sheet name (default: first sheet)")
	fs.StringVar(&f.column, "column", "", "header of the name column")
}

// addFontFlags adds font flags to a FlagSet.
func addFontFlags(fs *flag.FlagSet, f *fontFlags) {
	fs.StringVar(&f.path, "font", "", "TrueType/OpenType font file")
	fs.Float64Var(&f.size, "font-size", 0, "font size in template pixels")
	fs.StringVar(&f.color, "color", "", "text color (hex)")
	fs.StringVar(&f.locale, "locale", "", "title-casing locale, e.g. tr")
}

// addLayoutFlags adds text box flags to a FlagSet.
func addLayoutFlags(fs *flag.FlagSet, f *layoutFlags) {
	fs.IntVar(&f.boxWidth, "box-width", 0, "text box width")
	fs.IntVar(&f.boxHeight, "box-height", 0, "text box height")
	fs.IntVar(&f.offsetX, "offset-x", 0, "text box offset right of center")
	fs.IntVar(&f.offsetY, "offset-y", 0, "text box offset above center")
	fs.BoolVar(&f.strictFit, "strict-fit", false, "fail names that overflow the text box")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.dir, "output-dir", "o", "", "directory for per-name certificates")
	fs.StringVar(&f.merged, "merged", "", "combined PDF path")
	fs.StringVar(&f.errorLog, "error-log", "", "error log file")
	fs.BoolVar(&f.keepSingles, "keep-singles", false, "keep per-name files after merging")
}

// addRunFlags adds pool and retry flags to a FlagSet.
func addRunFlags(fs *flag.FlagSet, f *runFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.IntVarP(&f.maxRetries, "max-retries", "r", 0, "attempts per certificate")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-attempt timeout (e.g., 30s)")
}

// parseGenerateFlags parses generate/check flags and returns positional args.
func parseGenerateFlags(command string, args []string, usage usageFunc, stderr io.Writer) (*generateFlags, []string, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &generateFlags{}

	fs.StringVar(&f.template, "template", "", "certificate template image")
	addCommonFlags(fs, &f.common)
	addInputFlags(fs, &f.input)
	addFontFlags(fs, &f.font)
	addLayoutFlags(fs, &f.layout)
	addOutputFlags(fs, &f.output)
	addRunFlags(fs, &f.run)

	fs.Usage = func() { usage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	f.changed = fs.Changed
	return f, fs.Args(), nil
}
