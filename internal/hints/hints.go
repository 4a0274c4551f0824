// Package hints builds actionable suffixes for CLI error messages.
// Every hint is formatted as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-docstyle/internal/fileutil"
)

// IsInContainer reports whether the process runs inside Docker.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a known CI environment variable is set.
func inCI() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for browser launch failures.
func ForBrowserConnect() string {
	var hints []string

	if (inCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or use --engine fpdf to skip the browser")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound suggests --config, or creating the user config file
// when one of the searched paths lives under the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-docstyle") {
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

// ForLayoutNotFound lists the layouts accepted by --layout.
func ForLayoutNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("layouts: " + strings.Join(available, ", "))
}

// ForStyleNotFound lists the CSS add-ons accepted by --css.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", ") + "; or pass a .css file")
}

// ForUnsupportedInput names the accepted input types.
func ForUnsupportedInput() string {
	return format("inputs must be Markdown (.md) or Word (.docx)")
}

// ForAPIKey explains where the review command reads its key from.
func ForAPIKey(envVar string) string {
	return format("set " + envVar + " in the environment or in a .env file")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
