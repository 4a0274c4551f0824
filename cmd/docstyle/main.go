package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	setMaxProcs(os.Args, os.Stderr)
	os.Exit(runMain(context.Background(), os.Args, DefaultEnv()))
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota, reporting the
// change when --verbose is among args.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(args []string, w io.Writer) {
	logf := func(string, ...interface{}) {}
	if hasVerboseFlag(args) {
		logf = func(format string, a ...interface{}) {
			fmt.Fprintf(w, format+"\n", a...)
		}
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}

func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// runMain dispatches a command and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	cmd, rest := args[1], args[2:]
	var err error
	switch cmd {
	case "convert":
		err = runConvert(ctx, rest, env)
	case "review":
		err = runReview(ctx, rest, env)
	case "styles":
		err = runStyles(rest, env)
	case "init":
		err = runInit(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "docstyle %s\n", versionString())
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		runHelp([]string{cmd}, env)
		return ExitSuccess
	}
	if err != nil {
		var batch *batchError
		if errors.As(err, &batch) {
			// Each failure was already printed with its hint.
			fmt.Fprintln(env.Stderr, err)
		} else {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// versionString returns Version, or the module version for go install builds.
func versionString() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
