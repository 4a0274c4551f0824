package main

// Notes:
// - runReview is tested with a fake pool returning canned page images and
//   a fake model injected through Environment.NewModel.
// - lookupAPIKey reads .env files written into t.TempDir; --env-file always
//   points there so the working directory is never consulted.

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/review"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n....")

func reviewEnv(t *testing.T, model review.Model) *testEnv {
	t.Helper()
	te := newTestEnv(t, map[string]string{apiKeyEnv: "test-key"})
	te.pool.conv.pages = [][]byte{pngHeader, pngHeader}
	if model != nil {
		te.NewModel = func(_ context.Context, apiKey, _ string) (review.Model, error) {
			if apiKey != "test-key" {
				t.Errorf("apiKey = %q, want test-key", apiKey)
			}
			return model, nil
		}
	}
	return te
}

func reviewSource(t *testing.T) (src, envFile string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "thesis.md")
	writeFile(t, src, "# Thesis")
	return src, filepath.Join(dir, "absent.env")
}

// ---------------------------------------------------------------------------
// TestRunReview
// ---------------------------------------------------------------------------

func TestRunReview_JSON(t *testing.T) {
	t.Parallel()

	src, envFile := reviewSource(t)
	model := &fakeModel{reply: `{"issues": ["tight margins"], "suggestions": ["use 1in"], "score": 7}`}
	te := reviewEnv(t, model)

	err := runReview(context.Background(), []string{src, "--json", "-n", "2", "-l", "academic", "--env-file", envFile}, te.Environment)
	if err != nil {
		t.Fatalf("runReview: %v", err)
	}

	var report reviewReport
	if err := json.Unmarshal(te.stdout.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, te.stdout.String())
	}
	if len(report.Pages) != 2 || report.Average != 7 {
		t.Errorf("report = %+v", report)
	}
	if report.Layout != "academic" {
		t.Errorf("Layout = %q, want academic", report.Layout)
	}
	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2", model.calls)
	}
	if te.pool.conv.maxPages != 2 {
		t.Errorf("maxPages = %d, want 2", te.pool.conv.maxPages)
	}
}

func TestRunReview_DegradesWithoutModel(t *testing.T) {
	t.Parallel()

	src, envFile := reviewSource(t)
	te := reviewEnv(t, nil)

	if err := runReview(context.Background(), []string{src, "--env-file", envFile}, te.Environment); err != nil {
		t.Fatalf("runReview: %v", err)
	}
	out := te.stdout.String()
	if !strings.Contains(out, review.UnavailableIssue) {
		t.Errorf("stdout = %q, want degraded review", out)
	}
	if !strings.Contains(te.stderr.String(), "AI review unavailable") {
		t.Errorf("stderr = %q, want warning", te.stderr.String())
	}
	if te.pool.conv.maxPages != defaultReviewPages {
		t.Errorf("maxPages = %d, want %d", te.pool.conv.maxPages, defaultReviewPages)
	}
}

func TestRunReview_MinScore(t *testing.T) {
	t.Parallel()

	src, envFile := reviewSource(t)
	te := reviewEnv(t, &fakeModel{reply: `{"issues": [], "suggestions": [], "score": 4}`})

	err := runReview(context.Background(), []string{src, "-q", "--min-score", "6", "--env-file", envFile}, te.Environment)
	if !errors.Is(err, ErrLowScore) {
		t.Errorf("error = %v, want ErrLowScore", err)
	}
	if te.stdout.Len() != 0 {
		t.Errorf("quiet run wrote %q", te.stdout.String())
	}
}

func TestRunReview_Errors(t *testing.T) {
	t.Parallel()

	src, envFile := reviewSource(t)

	tests := []struct {
		name string
		vars map[string]string
		args []string
		want error
	}{
		{"no input", map[string]string{apiKeyEnv: "k"}, nil, ErrUsage},
		{"two inputs", map[string]string{apiKeyEnv: "k"}, []string{src, src}, ErrUsage},
		{"negative pages", map[string]string{apiKeyEnv: "k"}, []string{src, "-n", "-1"}, ErrUsage},
		{"unsupported", map[string]string{apiKeyEnv: "k"}, []string{"slides.pptx"}, docstyle.ErrUnsupportedInput},
		{"missing key", nil, []string{src, "--env-file", envFile}, ErrMissingAPIKey},
		{"missing file", map[string]string{apiKeyEnv: "k"}, []string{filepath.Join(t.TempDir(), "gone.md"), "--env-file", envFile}, ErrReadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := newTestEnv(t, tt.vars)
			err := runReview(context.Background(), tt.args, te.Environment)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunReview_CaptureFails(t *testing.T) {
	t.Parallel()

	src, envFile := reviewSource(t)
	te := reviewEnv(t, nil)
	te.pool.conv.captureErr = docstyle.ErrScreenshot

	err := runReview(context.Background(), []string{src, "--env-file", envFile}, te.Environment)
	if exitCodeFor(err) != ExitBrowser {
		t.Errorf("exit code = %d, want %d (err %v)", exitCodeFor(err), ExitBrowser, err)
	}
}

// ---------------------------------------------------------------------------
// TestLookupAPIKey
// ---------------------------------------------------------------------------

func TestLookupAPIKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	withKey := filepath.Join(dir, "with.env")
	if err := os.WriteFile(withKey, []byte(apiKeyEnv+"=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	withoutKey := filepath.Join(dir, "without.env")
	if err := os.WriteFile(withoutKey, []byte("OTHER=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		vars    map[string]string
		envFile string
		want    string
		wantErr error
	}{
		{"environment wins", map[string]string{apiKeyEnv: "from-env"}, withKey, "from-env", nil},
		{"env file", nil, withKey, "from-file", nil},
		{"env file without key", nil, withoutKey, "", ErrMissingAPIKey},
		{"missing env file", nil, filepath.Join(dir, "absent.env"), "", ErrMissingAPIKey},
		{"no env file", nil, "", "", ErrMissingAPIKey},
		{"env file is a directory", nil, dir, "", ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := lookupAPIKey(mapGetenv(tt.vars), tt.envFile)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("lookupAPIKey = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPrintReview
// ---------------------------------------------------------------------------

func TestPrintReview(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, nil)
	printReview(te.stdout, reviewReport{
		File:   "thesis.md",
		Layout: "academic",
		Pages: []review.Review{
			{Page: 1, Issues: []string{"widow line"}, Suggestions: []string{"keep with next"}, Score: 8},
		},
		Average: 8,
	})

	out := te.stdout.String()
	for _, want := range []string{"thesis.md (academic layout)", "Page 1: 8/10", "- widow line", "- keep with next", "Average score: 8.0/10 (1 pages)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
