package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for CLI dispatch.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidFlags   = errors.New("invalid flags")
)

func main() {
	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches a command and returns the process exit code.
// Without a command name, generate is assumed.
func run(ctx context.Context, args []string, env *Environment) int {
	cmd, rest := "generate", args
	if len(args) > 0 && !isFlag(args[0]) {
		cmd, rest = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "generate":
		err = runCommand(ctx, "generate", rest, printGenerateUsage, env, runGenerate)
	case "check":
		err = runCommand(ctx, "check", rest, printCheckUsage, env, runCheck)
	case "version":
		fmt.Fprintf(env.Stdout, "certgen %s\n", Version)
	case "help":
		runHelp(rest, env)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
	}

	if err != nil {
		fmt.Fprintln(env.Stderr, err)
	}
	return exitCodeFor(err)
}

// commandFunc executes a parsed command.
type commandFunc func(ctx context.Context, flags *generateFlags, env *Environment) error

// runCommand parses flags for a command and runs it. --help is not an error.
func runCommand(ctx context.Context, name string, args []string, usage usageFunc, env *Environment, fn commandFunc) error {
	flags, positional, err := parseGenerateFlags(name, args, usage, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrInvalidFlags, err)
	}
	if len(positional) > 0 {
		usage(env.Stderr)
		return fmt.Errorf("%w: unexpected arguments %v", ErrInvalidFlags, positional)
	}
	return fn(ctx, flags, env)
}

func isFlag(arg string) bool {
	return len(arg) > 0 && arg[0] == '-'
}
