// Package fileutil provides file, path and data URL helpers.
package fileutil

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrInvalidDataURL         = errors.New("invalid data URL")
)

// tempPrefix names temporary files created by this module.
const tempPrefix = "docstyle-"

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", tempPrefix+"*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "business" -> false (name)
//   - "./docstyle.yaml" -> true (relative path)
//   - "/etc/docstyle.yaml" -> true (absolute)
//   - "C:\config\docstyle.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL returns true if the string is an http or https URL.
func IsURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsDataURL returns true if the string is a data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "data:")
}

// DataURL encodes data as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL decodes a data URL into its MIME type and payload.
// Both base64 and percent-encoded payloads are accepted.
func ParseDataURL(s string) (mimeType string, data []byte, err error) {
	s = strings.TrimSpace(s)
	if !IsDataURL(s) {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURL)
	}
	meta, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return "", nil, fmt.Errorf("%w: missing comma", ErrInvalidDataURL)
	}

	isBase64 := false
	params := strings.Split(meta, ";")
	mimeType = strings.TrimSpace(params[0])
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		return mimeType, data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mimeType, []byte(unescaped), nil
}

// OutputPath returns the path for a converted file: dir/name when dir is
// set, otherwise name next to the input file.
func OutputPath(inputPath, dir, name string) string {
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, name)
}
