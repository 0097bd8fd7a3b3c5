package main

import (
	"fmt"
	"io"
)

// usageFunc prints a command's usage.
type usageFunc func(io.Writer)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: certgen [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Generate and merge certificates (default)")
	fmt.Fprintln(w, "  check      Validate config, template, font and table")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'certgen help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: certgen generate [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one certificate per name, merge them into one PDF and clean up.")
	fmt.Fprintln(w)
	printSharedFlags(w)
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: certgen check [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Verify that the template, font and name table load and that the")
	fmt.Fprintln(w, "output directory is writable, without rendering anything.")
	fmt.Fprintln(w)
	printSharedFlags(w)
}

func printSharedFlags(w io.Writer) {
	fmt.Fprintln(w, "Input:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --table <path>        Name table (.xlsx or .csv)")
	fmt.Fprintln(w, "      --sheet <name>        Spreadsheet sheet (default: first)")
	fmt.Fprintln(w, "      --column <header>     Name column header")
	fmt.Fprintln(w, "      --template <path>     Certificate template image")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Font:")
	fmt.Fprintln(w, "      --font <path>         TrueType/OpenType font")
	fmt.Fprintln(w, "      --font-size <f>       Font size in template pixels")
	fmt.Fprintln(w, "      --color <hex>         Text color (#RRGGBB)")
	fmt.Fprintln(w, "      --locale <tag>        Title-casing locale (e.g. tr)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Layout:")
	fmt.Fprintln(w, "      --box-width <n>       Text box width")
	fmt.Fprintln(w, "      --box-height <n>      Text box height")
	fmt.Fprintln(w, "      --offset-x <n>        Box offset right of template center")
	fmt.Fprintln(w, "      --offset-y <n>        Box offset above template center")
	fmt.Fprintln(w, "      --strict-fit          Fail names that overflow the box")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output-dir <path>   Per-name certificate directory")
	fmt.Fprintln(w, "      --merged <path>       Combined PDF (default: next to output dir)")
	fmt.Fprintln(w, "      --error-log <path>    Error log file")
	fmt.Fprintln(w, "      --keep-singles        Keep per-name files after merging")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -r, --max-retries <n>     Attempts per certificate")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-attempt timeout (e.g., 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-certificate results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CERTGEN_CONFIG, CERTGEN_TABLE, CERTGEN_COLUMN, CERTGEN_TEMPLATE,")
	fmt.Fprintln(w, "  CERTGEN_FONT, CERTGEN_OUTPUT_DIR, CERTGEN_MERGED, CERTGEN_ERROR_LOG,")
	fmt.Fprintln(w, "  CERTGEN_TIMEOUT, CERTGEN_WORKERS, CERTGEN_MAX_RETRIES, CERTGEN_KEEP_SINGLES")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "check":
		printCheckUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
