// Package config loads named YAML configuration files for the docstyle CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docstyle/internal/fileutil"
	"github.com/alnah/go-docstyle/internal/layout"
	"github.com/alnah/go-docstyle/internal/render"
	"github.com/alnah/go-docstyle/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxMarginLength   = 20  // "2.54cm"
	MaxFontLength     = 200 // CSS font stack
	MaxTOCTitleLength = 100
	MaxModelLength    = 100
)

// appDir names the directory under os.UserConfigDir searched for configs.
const appDir = "go-docstyle"

// Config holds every setting a CLI flag can also provide.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Layout    LayoutConfig    `yaml:"layout"`
	TOC       TOCConfig       `yaml:"toc"`
	Citations CitationsConfig `yaml:"citations"`
	PDF       PDFConfig       `yaml:"pdf"`
	Images    ImagesConfig    `yaml:"images"`
	Review    ReviewConfig    `yaml:"review"`
	Assets    AssetsConfig    `yaml:"assets"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // used when no input is given
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the source
	Format     string `yaml:"format"`     // pdf, docx, html or md
}

// LayoutConfig selects and adjusts a layout preset.
type LayoutConfig struct {
	Style      string `yaml:"style"`
	Margin     string `yaml:"margin"`
	FontFamily string `yaml:"fontFamily"`
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Title   string `yaml:"title"`
}

// CitationsConfig defines citation rewriting options.
type CitationsConfig struct {
	Harvard bool `yaml:"harvard"`
}

// PDFConfig defines the PDF engine.
type PDFConfig struct {
	Engine  string `yaml:"engine"`  // chrome or fpdf
	Timeout string `yaml:"timeout"` // Go duration, e.g. "45s"
}

// ImagesConfig defines remote image download options.
type ImagesConfig struct {
	Fetch       bool   `yaml:"fetch"`
	Timeout     string `yaml:"timeout"`
	Concurrency int    `yaml:"concurrency"`
	MaxBytes    int64  `yaml:"maxBytes"`
}

// ReviewConfig defines the AI layout review.
type ReviewConfig struct {
	Model    string `yaml:"model"`
	MaxPages int    `yaml:"maxPages"`
}

// AssetsConfig defines custom CSS add-on locations.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // directory holding styles/*.css
	CSS      string `yaml:"css"`      // add-on name, file path or inline CSS
}

// Validate checks value ranges and field lengths.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"layout.margin", c.Layout.Margin, MaxMarginLength},
		{"layout.fontFamily", c.Layout.FontFamily, MaxFontLength},
		{"toc.title", c.TOC.Title, MaxTOCTitleLength},
		{"review.model", c.Review.Model, MaxModelLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if !layout.IsValid(layout.Canonical(c.Layout.Style)) {
		return fmt.Errorf("%w: layout.style %q (available: %s)", ErrInvalidValue, c.Layout.Style, strings.Join(layout.Names(), ", "))
	}
	if c.Layout.Margin != "" {
		if _, err := layout.ToInches(c.Layout.Margin); err != nil {
			return fmt.Errorf("%w: layout.margin: %v", ErrInvalidValue, err)
		}
	}
	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %v", ErrInvalidValue, err)
	}

	switch strings.ToLower(c.PDF.Engine) {
	case "", "chrome", "fpdf":
	default:
		return fmt.Errorf("%w: pdf.engine %q (must be chrome or fpdf)", ErrInvalidValue, c.PDF.Engine)
	}
	if err := validateDuration("pdf.timeout", c.PDF.Timeout); err != nil {
		return err
	}
	if err := validateDuration("images.timeout", c.Images.Timeout); err != nil {
		return err
	}

	if c.Images.Concurrency < 0 {
		return fmt.Errorf("%w: images.concurrency must not be negative, got %d", ErrInvalidValue, c.Images.Concurrency)
	}
	if c.Images.MaxBytes < 0 {
		return fmt.Errorf("%w: images.maxBytes must not be negative, got %d", ErrInvalidValue, c.Images.MaxBytes)
	}
	if c.Review.MaxPages < 0 {
		return fmt.Errorf("%w: review.maxPages must not be negative, got %d", ErrInvalidValue, c.Review.MaxPages)
	}

	return nil
}

// PDFTimeout returns pdf.timeout, or zero when unset.
func (c *Config) PDFTimeout() time.Duration {
	d, _ := time.ParseDuration(c.PDF.Timeout)
	return d
}

// ImageTimeout returns images.timeout, or zero when unset.
func (c *Config) ImageTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Images.Timeout)
	return d
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateDuration(fieldName, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, fieldName, value)
	}
	return nil
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Format: string(render.FormatPDF)},
		Layout: LayoutConfig{Style: layout.DefaultName},
		PDF:    PDFConfig{Engine: "chrome"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is a file path; anything else is a
// name searched in the current directory, then in the user config directory.
// A missing file is an error; there is no silent fallback.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFile(configPath, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the files LoadConfig tries for name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, appDir, name+ext))
		}
	}
	return paths
}

// Sample returns DefaultConfig as YAML, suitable as a starting point for a
// config file.
func Sample() ([]byte, error) {
	return yamlutil.Marshal(DefaultConfig())
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", &NotFoundError{Name: name, Tried: paths}
}

// NotFoundError reports the paths searched for a named config.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %q (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

// Unwrap makes errors.Is(err, ErrConfigNotFound) hold.
func (e *NotFoundError) Unwrap() error {
	return ErrConfigNotFound
}
