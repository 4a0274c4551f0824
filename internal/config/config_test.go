package config

// Notes:
// - Name lookup in the user config directory is not tested: it would write
//   into the real os.UserConfigDir. SearchPaths covers the candidate list.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content to dir/name and returns the path.
func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// DefaultConfig
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Layout.Style != "business" {
		t.Errorf("Layout.Style = %q, want business", cfg.Layout.Style)
	}
	if cfg.Output.Format != "pdf" {
		t.Errorf("Output.Format = %q, want pdf", cfg.Output.Format)
	}
	if cfg.PDF.Engine != "chrome" {
		t.Errorf("PDF.Engine = %q, want chrome", cfg.PDF.Engine)
	}
	if cfg.TOC.Enabled || cfg.Citations.Harvard || cfg.Images.Fetch {
		t.Error("optional features should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid overrides", func(c *Config) {
			c.Layout = LayoutConfig{Style: "academic", Margin: "1in", FontFamily: "Georgia, serif"}
			c.PDF = PDFConfig{Engine: "fpdf", Timeout: "45s"}
			c.Images = ImagesConfig{Fetch: true, Timeout: "5s", Concurrency: 4, MaxBytes: 1 << 20}
		}, nil},
		{"unknown layout", func(c *Config) { c.Layout.Style = "gothic" }, ErrInvalidValue},
		{"bad margin", func(c *Config) { c.Layout.Margin = "wide" }, ErrInvalidValue},
		{"unknown format", func(c *Config) { c.Output.Format = "odt" }, ErrInvalidValue},
		{"unknown engine", func(c *Config) { c.PDF.Engine = "wkhtml" }, ErrInvalidValue},
		{"bad pdf timeout", func(c *Config) { c.PDF.Timeout = "soon" }, ErrInvalidValue},
		{"negative image timeout", func(c *Config) { c.Images.Timeout = "-1s" }, ErrInvalidValue},
		{"negative concurrency", func(c *Config) { c.Images.Concurrency = -1 }, ErrInvalidValue},
		{"negative max bytes", func(c *Config) { c.Images.MaxBytes = -1 }, ErrInvalidValue},
		{"negative review pages", func(c *Config) { c.Review.MaxPages = -2 }, ErrInvalidValue},
		{"toc title too long", func(c *Config) { c.TOC.Title = strings.Repeat("x", MaxTOCTitleLength+1) }, ErrFieldTooLong},
		{"font too long", func(c *Config) { c.Layout.FontFamily = strings.Repeat("x", MaxFontLength+1) }, ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.PDFTimeout() != 0 || cfg.ImageTimeout() != 0 {
		t.Error("unset durations should be zero")
	}
	cfg.PDF.Timeout = "90s"
	cfg.Images.Timeout = "250ms"
	if cfg.PDFTimeout() != 90*time.Second {
		t.Errorf("PDFTimeout() = %v", cfg.PDFTimeout())
	}
	if cfg.ImageTimeout() != 250*time.Millisecond {
		t.Errorf("ImageTimeout() = %v", cfg.ImageTimeout())
	}
}

// ---------------------------------------------------------------------------
// LoadConfig
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("file path", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "thesis.yaml", `layout:
  style: academic
  margin: 2cm
toc:
  enabled: true
  title: Contents
citations:
  harvard: true
output:
  format: docx
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Layout.Style != "academic" || cfg.Layout.Margin != "2cm" {
			t.Errorf("Layout = %+v", cfg.Layout)
		}
		if !cfg.TOC.Enabled || cfg.TOC.Title != "Contents" {
			t.Errorf("TOC = %+v", cfg.TOC)
		}
		if !cfg.Citations.Harvard {
			t.Error("Citations.Harvard = false, want true")
		}
		if cfg.Output.Format != "docx" {
			t.Errorf("Output.Format = %q, want docx", cfg.Output.Format)
		}
		if cfg.PDF.Engine != "chrome" {
			t.Errorf("unset PDF.Engine = %q, want default chrome", cfg.PDF.Engine)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "layout: [unclosed")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "unknown.yaml", "layout:\n  style: novel\nwatermark: true\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "engine.yaml", "pdf:\n  engine: prince\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestLoadConfig_NameInWorkingDir(t *testing.T) {
	// Changes the working directory; not parallel.
	dir := t.TempDir()
	writeConfig(t, dir, "memo.yml", "layout:\n  style: modern\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("memo")
	if err != nil {
		t.Fatalf("LoadConfig(memo) error = %v", err)
	}
	if cfg.Layout.Style != "modern" {
		t.Errorf("Layout.Style = %q, want modern", cfg.Layout.Style)
	}
}

func TestLoadConfig_NameNotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig("nowhere")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error %T is not *NotFoundError", err)
	}
	if len(nf.Tried) < 2 || nf.Tried[0] != "nowhere.yaml" || nf.Tried[1] != "nowhere.yml" {
		t.Errorf("Tried = %v", nf.Tried)
	}
}

// ---------------------------------------------------------------------------
// SearchPaths / Sample
// ---------------------------------------------------------------------------

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("team")
	if paths[0] != "team.yaml" || paths[1] != "team.yml" {
		t.Errorf("local candidates = %v", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, appDir) {
			t.Errorf("user candidate %q outside %s", p, appDir)
		}
	}
}

func TestSample(t *testing.T) {
	t.Parallel()

	out, err := Sample()
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	for _, want := range []string{"layout:", "style: business", "engine: chrome"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Sample() missing %q:\n%s", want, out)
		}
	}

	path := writeConfig(t, t.TempDir(), "sample.yaml", string(out))
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("LoadConfig(Sample()) error = %v", err)
	}
}
