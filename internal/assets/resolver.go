package assets

import (
	"errors"
	"sort"
)

// Resolver combines a custom filesystem loader with the embedded add-ons.
// Custom styles shadow embedded ones of the same name.
type Resolver struct {
	custom   StyleLoader // nil without a custom path
	embedded StyleLoader
}

// NewResolver creates a Resolver. An empty customBasePath uses only the
// embedded add-ons; an invalid one is an error.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadStyle loads a style from the custom path first, then from the embedded
// add-ons. Only a missing style falls back; validation and I/O errors do not.
func (r *Resolver) LoadStyle(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadStyle(name)
	}

	content, err := r.custom.LoadStyle(name)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrStyleNotFound) {
		return "", err
	}
	return r.embedded.LoadStyle(name)
}

// ListStyles returns the union of custom and embedded style names.
func (r *Resolver) ListStyles() ([]string, error) {
	names, err := r.embedded.ListStyles()
	if err != nil {
		return nil, err
	}
	if r.custom == nil {
		return names, nil
	}

	custom, err := r.custom.ListStyles()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(names)+len(custom))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range custom {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// HasCustomLoader reports whether a custom path is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ StyleLoader = (*Resolver)(nil)
