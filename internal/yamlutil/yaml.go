// Package yamlutil reads and writes YAML configuration documents.
package yamlutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrSyntax         = errors.New("yamlutil: invalid document")
)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// UnmarshalStrict decodes data into v, rejecting unknown fields.
// Parse errors carry the offending source line.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("%w:\n%s", ErrSyntax, yaml.FormatError(err, false, true))
	}
	return nil
}

// ReadFile strictly decodes the YAML file at path into v.
func ReadFile(path string, v any) error {
	f, err := os.Open(path) // #nosec G304 -- config path chosen by the user
	if err != nil {
		return err
	}
	defer f.Close()

	// One extra byte tells an oversized file apart from one at the limit.
	data, err := io.ReadAll(io.LimitReader(f, int64(MaxInputSize)+1))
	if err != nil {
		return err
	}
	if err := UnmarshalStrict(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Marshal encodes v as block-style YAML with two-space indentation.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
