package assets

import (
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-docstyle/internal/fileutil"
)

// ResolveCSS turns a style reference into CSS content:
//   - empty: no CSS
//   - contains "{": inline CSS, returned as is
//   - ends in .css or contains a path separator: a file on disk
//   - anything else: a style name for loader
func ResolveCSS(loader StyleLoader, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", nil
	case strings.Contains(ref, "{"):
		return ref, nil
	case strings.HasSuffix(ref, ".css") || fileutil.IsFilePath(ref):
		content, err := os.ReadFile(ref) // #nosec G304 -- user-provided stylesheet
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
		return string(content), nil
	default:
		return loader.LoadStyle(ref)
	}
}
