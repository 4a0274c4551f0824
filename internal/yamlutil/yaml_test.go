package yamlutil_test

// Notes:
// - Marshal error branch: not tested because encoding only fails for types
//   such as channels or functions, which no config struct carries.

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-docstyle/internal/yamlutil"
)

type testConfig struct {
	Name    string   `yaml:"name"`
	Count   int      `yaml:"count"`
	Enabled bool     `yaml:"enabled"`
	Tags    []string `yaml:"tags,omitempty"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Parses YAML and rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "known fields",
			data: []byte("name: strict\ncount: 10\nenabled: true"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Name != "strict" || cfg.Count != 10 || !cfg.Enabled {
					t.Errorf("got %+v", cfg)
				}
			},
		},
		{
			name: "unicode content",
			data: []byte("name: 日本語テスト"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				if got := v.(*testConfig).Name; got != "日本語テスト" {
					t.Errorf("Name = %q, want %q", got, "日本語テスト")
				}
			},
		},
		{
			name:    "unknown field",
			data:    []byte("name: test\nunknown_field: value"),
			dest:    &testConfig{},
			wantErr: yamlutil.ErrSyntax,
		},
		{
			name:    "invalid syntax",
			data:    []byte("name: [unclosed"),
			dest:    &testConfig{},
			wantErr: yamlutil.ErrSyntax,
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: test"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "too large",
			data:    []byte("name: " + strings.Repeat("x", yamlutil.MaxInputSize)),
			dest:    &testConfig{},
			wantErr: yamlutil.ErrInputTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

func TestUnmarshalStrict_ErrorNamesField(t *testing.T) {
	t.Parallel()

	err := yamlutil.UnmarshalStrict([]byte("name: a\nmystery: b\n"), &testConfig{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "mystery") {
		t.Errorf("error %q should name the unknown field", err)
	}
}

// ---------------------------------------------------------------------------
// TestReadFile - Reads and decodes a YAML file
// ---------------------------------------------------------------------------

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "valid.yaml")
		if err := os.WriteFile(path, []byte("name: file\ntags:\n  - a\n  - b\n"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		var cfg testConfig
		if err := yamlutil.ReadFile(path, &cfg); err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if cfg.Name != "file" || len(cfg.Tags) != 2 {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := yamlutil.ReadFile(filepath.Join(dir, "missing.yaml"), &cfg)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadFile() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("error includes path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("bogus: 1\n"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		var cfg testConfig
		err := yamlutil.ReadFile(path, &cfg)
		if !errors.Is(err, yamlutil.ErrSyntax) {
			t.Fatalf("ReadFile() error = %v, want ErrSyntax", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error %q should contain path", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMarshal - Encodes Go values as YAML
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	in := testConfig{Name: "round", Count: 3, Tags: []string{"x"}}
	out, err := yamlutil.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{"name: round", "count: 3", "tags:", "- x"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Marshal() output missing %q:\n%s", want, out)
		}
	}

	var back testConfig
	if err := yamlutil.UnmarshalStrict(out, &back); err != nil {
		t.Fatalf("UnmarshalStrict(Marshal()) error = %v", err)
	}
	if back.Name != in.Name || back.Count != in.Count {
		t.Errorf("decoded %+v, want %+v", back, in)
	}
}
