package render

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/alnah/go-docstyle/internal/fileutil"
	"github.com/alnah/go-docstyle/internal/ir"
)

// embedded is an image ready to be packaged into a DOCX or PDF file.
type embedded struct {
	Data   []byte
	Format string // "png", "jpeg" or "gif"
	Width  int    // pixels
	Height int
}

// Extension returns the file extension for the image format.
func (e embedded) Extension() string {
	if e.Format == "jpeg" {
		return "jpg"
	}
	return e.Format
}

// embed resolves the bytes of img from its blob or a data URL and converts
// formats the writers cannot store natively to PNG. Remote images without a
// blob, and bytes that do not decode, are reported as not embeddable.
func embed(img ir.ImageElement) (embedded, bool) {
	data := img.Blob
	if len(data) == 0 {
		if !fileutil.IsDataURL(img.URL) {
			return embedded{}, false
		}
		_, decoded, err := fileutil.ParseDataURL(img.URL)
		if err != nil {
			return embedded{}, false
		}
		data = decoded
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return embedded{}, false
	}

	switch format {
	case "png", "jpeg", "gif":
		return embedded{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, true
	default:
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return embedded{}, false
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, decoded); err != nil {
			return embedded{}, false
		}
		return embedded{Data: buf.Bytes(), Format: "png", Width: cfg.Width, Height: cfg.Height}, true
	}
}

// imageSource returns the src attribute for img: a data URL when the bytes
// were fetched, the original URL otherwise.
func imageSource(img ir.ImageElement) string {
	if !img.HasBlob() {
		return img.URL
	}
	mt := img.MIMEType
	if mt == "" {
		mt = http.DetectContentType(img.Blob)
	}
	return fileutil.DataURL(mt, img.Blob)
}
