package main

// Notes:
// - styles, init and help write to injected buffers; init writes files
//   into t.TempDir only.
// - hintFor and batchError are checked through their rendered text.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunStyles
// ---------------------------------------------------------------------------

func TestRunStyles(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, nil)
	if err := runStyles(nil, te.Environment); err != nil {
		t.Fatalf("runStyles: %v", err)
	}

	out := te.stdout.String()
	for _, name := range docstyle.LayoutNames() {
		if !strings.Contains(out, "  "+name) {
			t.Errorf("output missing layout %q", name)
		}
	}
	for _, addOn := range []string{"compact", "draft", "large-print"} {
		if !strings.Contains(out, "  "+addOn+"\n") {
			t.Errorf("output missing add-on %q", addOn)
		}
	}
}

func TestRunStyles_CustomAssetPath(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeFile(t, filepath.Join(base, "styles", "house.css"), "body { color: navy; }")
	te := newTestEnv(t, nil)

	if err := runStyles([]string{"--asset-path", base}, te.Environment); err != nil {
		t.Fatalf("runStyles: %v", err)
	}
	if !strings.Contains(te.stdout.String(), "  house\n") {
		t.Errorf("output missing custom add-on: %q", te.stdout.String())
	}

	err := runStyles([]string{"--asset-path", filepath.Join(base, "absent")}, te.Environment)
	if err == nil {
		t.Error("missing asset path should fail")
	}
}

func TestFirstFont(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stack string
		want  string
	}{
		{`"Times New Roman", Times, serif`, "Times New Roman"},
		{"Georgia", "Georgia"},
		{" 'Inter' , sans-serif", "Inter"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := firstFont(tt.stack); got != tt.want {
			t.Errorf("firstFont(%q) = %q, want %q", tt.stack, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunInit
// ---------------------------------------------------------------------------

func TestRunInit_Stdout(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, nil)
	if err := runInit(nil, te.Environment); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if !strings.Contains(te.stdout.String(), "style: business") {
		t.Errorf("sample = %q", te.stdout.String())
	}
}

func TestRunInit_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "house.yaml")
	te := newTestEnv(t, nil)

	if err := runInit([]string{path}, te.Environment); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("written sample does not load: %v", err)
	}
	if cfg.Layout.Style != "business" {
		t.Errorf("Layout.Style = %q, want business", cfg.Layout.Style)
	}

	if err := runInit([]string{path}, te.Environment); !errors.Is(err, ErrUsage) {
		t.Errorf("second init error = %v, want ErrUsage", err)
	}
	if err := runInit([]string{path, path}, te.Environment); !errors.Is(err, ErrUsage) {
		t.Errorf("two paths error = %v, want ErrUsage", err)
	}
}

func TestRunInit_WriteError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing-dir", "house.yaml")
	te := newTestEnv(t, nil)
	if err := runInit([]string{path}, te.Environment); !errors.Is(err, ErrWriteOutput) {
		t.Errorf("error = %v, want ErrWriteOutput", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("file should not exist")
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args       []string
		wantStdout string
		wantStderr string
	}{
		{nil, "Commands:", ""},
		{[]string{"convert"}, "--name-from-title", ""},
		{[]string{"review"}, apiKeyEnv, ""},
		{[]string{"styles"}, "docstyle styles", ""},
		{[]string{"init"}, "docstyle init", ""},
		{[]string{"doctor"}, "docstyle doctor", ""},
		{[]string{"version"}, "docstyle version", ""},
		{[]string{"help"}, "docstyle help", ""},
		{[]string{"bogus"}, "", "Unknown command: bogus"},
	}

	for _, tt := range tests {
		te := newTestEnv(t, nil)
		runHelp(tt.args, te.Environment)
		if !strings.Contains(te.stdout.String(), tt.wantStdout) {
			t.Errorf("help %v stdout = %q, want %q", tt.args, te.stdout.String(), tt.wantStdout)
		}
		if !strings.Contains(te.stderr.String(), tt.wantStderr) {
			t.Errorf("help %v stderr = %q, want %q", tt.args, te.stderr.String(), tt.wantStderr)
		}
	}
}

// ---------------------------------------------------------------------------
// TestErrors - usageError, batchError, hintFor
// ---------------------------------------------------------------------------

func TestBatchError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	single := &batchError{failed: 1, total: 1, first: cause}
	if single.Error() != "conversion failed" {
		t.Errorf("single = %q", single.Error())
	}
	multi := &batchError{failed: 2, total: 5, first: cause}
	if multi.Error() != "2 of 5 conversions failed" {
		t.Errorf("multi = %q", multi.Error())
	}
	if !errors.Is(multi, cause) {
		t.Error("batchError should unwrap to the first failure")
	}
}

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"browser", fmt.Errorf("x: %w", docstyle.ErrBrowserConnect), "--engine fpdf"},
		{"layout", docstyle.ErrUnknownLayout, "academic"},
		{"api key", ErrMissingAPIKey, apiKeyEnv},
		{"config", &config.NotFoundError{Name: "house", Tried: []string{"house.yaml"}}, "--config"},
		{"plain", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		got := hintFor(tt.err)
		if tt.want == "" {
			if got != "" {
				t.Errorf("%s: hint = %q, want none", tt.name, got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s: hint = %q, want it to mention %q", tt.name, got, tt.want)
		}
	}
}
