package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docstyle"
)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// isSourceFile reports whether path has an extension the extractor accepts.
func isSourceFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".docx":
		return true
	}
	return false
}

// validateSourceFile rejects explicitly named files of an unsupported type.
func validateSourceFile(path string) error {
	if !isSourceFile(path) {
		return fmt.Errorf("%w: %q", docstyle.ErrUnsupportedInput, filepath.Ext(path))
	}
	return nil
}

// discoverFiles finds the documents to convert under inputPath. A single
// file must be Markdown or Word; a directory is walked for both, skipping
// Word lock files.
func discoverFiles(inputPath, output string, format docstyle.Format) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateSourceFile(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, output, "", format)
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isSourceFile(path) || strings.HasPrefix(d.Name(), "~$") {
			return nil
		}
		outPath := resolveOutputPath(path, output, inputPath, format)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines where the converted form of inputPath goes.
// An output ending in the format extension names the file itself; any other
// output is a directory mirroring the tree under baseInputDir. The source is
// never overwritten: a clash gets a ".styled" infix.
func resolveOutputPath(inputPath, output, baseInputDir string, format docstyle.Format) string {
	ext := "." + format.Extension()
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	var out string
	switch {
	case output == "":
		out = filepath.Join(filepath.Dir(inputPath), base+ext)
	case strings.EqualFold(filepath.Ext(output), ext) && baseInputDir == "":
		out = output
	default:
		dir := output
		if baseInputDir != "" {
			if rel, err := filepath.Rel(baseInputDir, filepath.Dir(inputPath)); err == nil {
				dir = filepath.Join(output, rel)
			}
		}
		out = filepath.Join(dir, base+ext)
	}

	if filepath.Clean(out) == filepath.Clean(inputPath) {
		out = strings.TrimSuffix(out, ext) + ".styled" + ext
	}
	return out
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > docstyle.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, docstyle.MaxPoolSize)
	}
	return nil
}
