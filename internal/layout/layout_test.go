package layout

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestResolve_Academic(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve("academic", Overrides{})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if cfg.LineHeight != 2.0 {
		t.Errorf("LineHeight = %v, want 2.0", cfg.LineHeight)
	}
	if cfg.Margin != "2.54cm" {
		t.Errorf("Margin = %q, want %q", cfg.Margin, "2.54cm")
	}
}

func TestResolve_MarginOverrideDoesNotMutatePreset(t *testing.T) {
	t.Parallel()

	before, _ := preset(Academic)

	cfg, err := Resolve("academic", Overrides{Margin: "3cm"})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if cfg.Margin != "3cm" {
		t.Errorf("Margin = %q, want %q", cfg.Margin, "3cm")
	}
	if cfg.LineHeight != 2.0 {
		t.Errorf("LineHeight = %v, want 2.0", cfg.LineHeight)
	}

	after, _ := preset(Academic)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("preset changed after override:\nbefore %+v\nafter  %+v", before, after)
	}

	again, err := Resolve("academic", Overrides{})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if again.Margin != "2.54cm" {
		t.Errorf("second Resolve Margin = %q, want %q", again.Margin, "2.54cm")
	}
}

func TestResolve_FontFamilyOverride(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve("modern", Overrides{FontFamily: "Inter"})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	want := Fonts{Title: "Inter", Heading: "Inter", Body: "Inter"}
	if cfg.Fonts != want {
		t.Errorf("Fonts = %+v, want %+v", cfg.Fonts, want)
	}

	base, _ := preset(Modern)
	if base.Fonts.Body == "Inter" {
		t.Error("font override leaked into the preset")
	}
}

func TestResolve_UnknownStyle(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve("gothic", Overrides{})
	if !errors.Is(err, ErrUnknownLayout) {
		t.Fatalf("Resolve(gothic) error = %v, want ErrUnknownLayout", err)
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("error should wrap ErrConfig: %v", err)
	}
	if cfg != (LayoutConfig{}) {
		t.Errorf("Resolve(gothic) returned partial config %+v", cfg)
	}
}

func TestResolve_RequiresExactName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "   ", "ACADEMIC", " novel", "Classic"} {
		cfg, err := Resolve(name, Overrides{})
		if !errors.Is(err, ErrUnknownLayout) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnknownLayout", name, err)
		}
		if !errors.Is(err, ErrConfig) {
			t.Errorf("Resolve(%q) error should wrap ErrConfig: %v", name, err)
		}
		if cfg != (LayoutConfig{}) {
			t.Errorf("Resolve(%q) returned config %+v", name, cfg)
		}
		if IsValid(name) {
			t.Errorf("IsValid(%q) = true", name)
		}
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", DefaultName},
		{"   ", DefaultName},
		{"  Novel ", Novel},
		{"CLASSIC", Classic},
		{"gothic", "gothic"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	want := []string{"business", "academic", "novel", "modern", "classic"}
	got := Names()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	got[0] = "changed"
	if Names()[0] != "business" {
		t.Error("Names() exposes internal slice")
	}

	for _, name := range want {
		if !IsValid(name) {
			t.Errorf("IsValid(%q) = false", name)
		}
		cfg, _ := preset(name)
		if cfg.Fonts.Body == "" || cfg.LineHeight == 0 || cfg.Margin == "" || cfg.PageSize == "" {
			t.Errorf("preset %q is incomplete: %+v", name, cfg)
		}
	}
}

func TestLayoutConfig_CSS(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve("academic", Overrides{Margin: "3cm", FontFamily: "Times New Roman"})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	css := cfg.CSS()

	for _, want := range []string{
		"size: Letter;",
		"margin: 3cm;",
		`font-family: "Times New Roman";`,
		"line-height: 2;",
		"text-indent: 1.27cm;",
		"orphans: 2;",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("CSS missing %q", want)
		}
	}
}

func TestFontStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word is quoted", "Arial", `"Arial"`},
		{"generic stays bare", "Georgia, Serif", `"Georgia", serif`},
		{"spaces", "Times New Roman, serif", `"Times New Roman", serif`},
		{"already quoted", `'Fira Sans', "Inter"`, `"Fira Sans", "Inter"`},
		{"declaration break stays inside the string", "Arial;}body{display:none", `"Arial;}body{display:none"`},
		{"embedded quote is escaped", `Evil"; color: red`, `"Evil\"; color: red"`},
		{"empty falls back", " , ", "sans-serif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fontStack(tt.in); got != tt.want {
				t.Errorf("fontStack(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestLayoutConfig_CSS_FontFamilyCannotEscape(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(Business, Overrides{FontFamily: "Arial;}body{display:none"})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	css := cfg.CSS()
	if !strings.Contains(css, `font-family: "Arial;}body{display:none";`) {
		t.Errorf("font family not confined to a CSS string:\n%s", css)
	}
}

func TestToInches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"2.54cm", 1, false},
		{"25.4mm", 1, false},
		{"1in", 1, false},
		{"72pt", 1, false},
		{"96px", 1, false},
		{"2.54", 1, false},
		{"wide", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ToInches(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrConfig) {
				t.Errorf("ToInches(%q) error = %v, want ErrConfig", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ToInches(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ToInches(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
