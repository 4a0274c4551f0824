package assets

import (
	"fmt"
	"strings"
)

// StyleLoader loads CSS add-ons by name.
type StyleLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// ListStyles returns the available style names, sorted.
	ListStyles() ([]string, error)
}

// ValidateAssetName rejects names that could escape the styles directory or
// change the file extension: empty names and names with separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
