package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-docstyle/internal/config"
)

// envPrefix marks the environment variables read by the CLI.
const envPrefix = "DOCSTYLE_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // DOCSTYLE_CONFIG: config file name or path
	Layout     string        // DOCSTYLE_LAYOUT: layout style
	Format     string        // DOCSTYLE_FORMAT: output format
	Engine     string        // DOCSTYLE_ENGINE: chrome or fpdf
	CSS        string        // DOCSTYLE_CSS: CSS add-on name or path
	Timeout    time.Duration // DOCSTYLE_TIMEOUT: page load timeout
	InputDir   string        // DOCSTYLE_INPUT_DIR: default input directory
	OutputDir  string        // DOCSTYLE_OUTPUT_DIR: default output directory
	Workers    int           // DOCSTYLE_WORKERS: parallel workers
	Model      string        // DOCSTYLE_REVIEW_MODEL: Gemini model
}

// knownEnvVars lists valid DOCSTYLE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCSTYLE_CONFIG":       true,
	"DOCSTYLE_LAYOUT":       true,
	"DOCSTYLE_FORMAT":       true,
	"DOCSTYLE_ENGINE":       true,
	"DOCSTYLE_CSS":          true,
	"DOCSTYLE_TIMEOUT":      true,
	"DOCSTYLE_INPUT_DIR":    true,
	"DOCSTYLE_OUTPUT_DIR":   true,
	"DOCSTYLE_WORKERS":      true,
	"DOCSTYLE_REVIEW_MODEL": true,
}

// loadEnvConfig reads the DOCSTYLE_* variables. Malformed durations and
// counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("DOCSTYLE_CONFIG"),
		Layout:     getenv("DOCSTYLE_LAYOUT"),
		Format:     getenv("DOCSTYLE_FORMAT"),
		Engine:     getenv("DOCSTYLE_ENGINE"),
		CSS:        getenv("DOCSTYLE_CSS"),
		InputDir:   getenv("DOCSTYLE_INPUT_DIR"),
		OutputDir:  getenv("DOCSTYLE_OUTPUT_DIR"),
		Model:      getenv("DOCSTYLE_REVIEW_MODEL"),
	}

	if timeout := getenv("DOCSTYLE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("DOCSTYLE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars reports DOCSTYLE_* variables the CLI does not read.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig copies environment values over the config file values.
// CLI flags are merged afterwards, giving:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Layout != "" {
		cfg.Layout.Style = env.Layout
	}
	if env.Format != "" {
		cfg.Output.Format = env.Format
	}
	if env.Engine != "" {
		cfg.PDF.Engine = env.Engine
	}
	if env.CSS != "" {
		cfg.Assets.CSS = env.CSS
	}
	if env.Timeout > 0 {
		cfg.PDF.Timeout = env.Timeout.String()
	}
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Model != "" {
		cfg.Review.Model = env.Model
	}
}
