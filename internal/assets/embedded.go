package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*.css
var styles embed.FS

// EmbeddedLoader loads the built-in add-ons.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS style from embedded assets by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// ListStyles returns the names of the embedded styles.
func (e *EmbeddedLoader) ListStyles() ([]string, error) {
	return listStyles(styles, "styles")
}

// listStyles collects *.css names from dir of fsys.
func listStyles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".css") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	sort.Strings(names)
	return names, nil
}

// Compile-time interface check.
var _ StyleLoader = (*EmbeddedLoader)(nil)
