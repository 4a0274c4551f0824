package pipeline

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-docstyle/internal/fileutil"
	"github.com/alnah/go-docstyle/internal/ir"
)

// MaxLocalImageBytes caps the size of an image read from disk.
const MaxLocalImageBytes = 20 << 20

// ResolveLocalImages loads images referenced by relative paths from sourceDir.
// It returns a copy of images where each readable local image carries its
// bytes and MIME type and points at an absolute file:// URL.
// If sourceDir is empty, the images are returned unchanged.
//
// Not resolved:
//   - remote, file:// and data: URLs (already absolute)
//   - absolute paths (never read outside sourceDir)
//   - paths escaping sourceDir through ".."
func ResolveLocalImages(images []ir.ImageElement, sourceDir string, log *zap.Logger) []ir.ImageElement {
	out := append([]ir.ImageElement(nil), images...)
	if sourceDir == "" {
		return out
	}
	if log == nil {
		log = zap.NewNop()
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		log.Warn("cannot resolve source directory", zap.String("dir", sourceDir), zap.Error(err))
		return out
	}

	for i := range out {
		if out[i].HasBlob() || !isRelativePath(out[i].URL) {
			continue
		}
		rel := out[i].URL
		if unescaped, err := url.PathUnescape(rel); err == nil {
			rel = unescaped
		}

		absPath := filepath.Join(absSourceDir, filepath.FromSlash(rel))
		if !isPathUnderDir(absPath, absSourceDir) {
			log.Warn("image path escapes source directory", zap.String("url", out[i].URL))
			continue
		}

		data, mimeType, ok := readLocalImage(absPath, log)
		if !ok {
			continue
		}
		out[i].URL = pathToFileURL(absPath)
		out[i].Blob = data
		out[i].MIMEType = mimeType
	}
	return out
}

func readLocalImage(path string, log *zap.Logger) ([]byte, string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		log.Warn("local image not found", zap.String("path", path))
		return nil, "", false
	}
	if info.Size() > MaxLocalImageBytes {
		log.Warn("local image too large", zap.String("path", path), zap.Int64("bytes", info.Size()))
		return nil, "", false
	}

	data, err := os.ReadFile(path) // #nosec G304 -- confined to the source directory
	if err != nil {
		log.Warn("reading local image", zap.String("path", path), zap.Error(err))
		return nil, "", false
	}

	mimeType := http.DetectContentType(data)
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		mimeType = "image/svg+xml"
	}
	if !strings.HasPrefix(mimeType, "image/") {
		log.Warn("local file is not an image", zap.String("path", path), zap.String("mime", mimeType))
		return nil, "", false
	}
	return data, mimeType, true
}

// isRelativePath returns true if the reference names a file relative to the
// document.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	if fileutil.IsURL(path) || fileutil.IsDataURL(path) ||
		strings.HasPrefix(strings.ToLower(path), "file://") ||
		strings.HasPrefix(path, "//") ||
		strings.HasPrefix(path, "#") {
		return false
	}

	return !filepath.IsAbs(path)
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
