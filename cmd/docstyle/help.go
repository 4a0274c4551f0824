package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docstyle <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Restyle Markdown and Word documents")
	fmt.Fprintln(w, "  review     Score the rendered layout with a vision model")
	fmt.Fprintln(w, "  styles     List layouts and CSS add-ons")
	fmt.Fprintln(w, "  init       Write a starter config file")
	fmt.Fprintln(w, "  doctor     Check Chrome and environment setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docstyle help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docstyle convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Restyle Markdown (.md) and Word (.docx) documents with a layout preset.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    File or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: pdf, docx, html, md (default pdf)")
	fmt.Fprintln(w, "      --name-from-title     Name outputs after the document title")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	printLayoutUsage(w)
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, "      --toc                 Add a table of contents")
	fmt.Fprintln(w, "      --toc-title <s>       Table of contents heading")
	fmt.Fprintln(w, "      --harvard             Rewrite citations as (Author, Year)")
	fmt.Fprintln(w, "      --fetch-images        Download remote images")
	fmt.Fprintln(w, "      --strict              Fail on dangling image references")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "  -e, --engine <s>          chrome (default) or fpdf (no browser)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w)
	printOutputControlUsage(w)
}

// printReviewUsage prints usage for the review command.
func printReviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docstyle review <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a document with headless Chrome and score its first pages with")
	fmt.Fprintln(w, "Gemini. Reads "+apiKeyEnv+" from the environment or a .env file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Review:")
	fmt.Fprintln(w, "  -n, --pages <n>           Pages to review (default 3)")
	fmt.Fprintln(w, "  -m, --model <s>           Gemini model name")
	fmt.Fprintln(w, "      --env-file <path>     File to read the API key from (default .env)")
	fmt.Fprintln(w, "      --json                Print reviews as JSON")
	fmt.Fprintln(w, "      --min-score <f>       Fail when the average score is lower")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printLayoutUsage(w)
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, "      --toc, --toc-title, --harvard, --fetch-images, --strict")
	fmt.Fprintln(w, "                            Same as convert")
	fmt.Fprintln(w)
	printOutputControlUsage(w)
}

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Layout:")
	fmt.Fprintln(w, "  -l, --layout <s>          business, academic, novel, modern, classic")
	fmt.Fprintln(w, "      --margin <len>        Page margin as a CSS length, at most 3in")
	fmt.Fprintln(w, "      --font <s>            Font family for all text")
	fmt.Fprintln(w, "      --css <s>             CSS add-on name, .css file or inline CSS")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory with custom styles/*.css")
	fmt.Fprintln(w)
}

func printOutputControlUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "review":
		printReviewUsage(env.Stdout)
	case "styles":
		fmt.Fprintln(env.Stdout, "Usage: docstyle styles [--asset-path <dir>]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "List layout presets and CSS add-ons.")
	case "init":
		fmt.Fprintln(env.Stdout, "Usage: docstyle init [path]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Write a starter config to path, or print it when no path is given.")
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: docstyle doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, container, temp directory and API key setup.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docstyle version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docstyle help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
