package editor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/example/pixeledit/internal/render"
)

// Format is an export encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// DefaultJPEGQuality is used when ExportOptions.Quality is unset.
const DefaultJPEGQuality = 92

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// FormatForPath picks the format from the file extension of path, falling
// back to def when there is none.
func FormatForPath(path string, def Format) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return def, nil
	}
	return ParseFormat(ext)
}

// ExportOptions controls Export.
type ExportOptions struct {
	Format Format
	// Quality is the JPEG quality, 1 to 100.
	Quality int
	// Shadow, when enabled, surrounds the image with a drop shadow. The
	// exported image is then larger than the working buffer.
	Shadow render.ShadowOptions
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, opts ExportOptions) error {
	switch opts.Format {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatJPEG:
		q := opts.Quality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: min(q, 100)})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported image format %q", opts.Format)
}

// ExportImage renders the image for export: flattened, and with a shadow if
// one is configured.
func (e *Editor) ExportImage(opts ExportOptions) (*image.RGBA, error) {
	img, err := e.Flatten()
	if err != nil {
		return nil, err
	}
	if opts.Shadow.Enabled() {
		img, _ = render.ApplyShadow(img, opts.Shadow)
	}
	return img, nil
}

// Export writes the flattened image to w.
func (e *Editor) Export(w io.Writer, opts ExportOptions) error {
	img, err := e.ExportImage(opts)
	if err != nil {
		return e.report("export", err)
	}
	if err := Encode(w, img, opts); err != nil {
		return e.report("export", err)
	}
	return nil
}

// ExportBytes returns the encoded flattened image.
func (e *Editor) ExportBytes(opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(&buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFile writes the flattened image to path. An empty format is taken
// from the file extension.
func (e *Editor) ExportFile(path string, opts ExportOptions) error {
	if opts.Format == "" {
		f, err := FormatForPath(path, FormatPNG)
		if err != nil {
			return e.report("export", err)
		}
		opts.Format = f
	}
	img, err := e.ExportImage(opts)
	if err != nil {
		return e.report("export", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return e.report("export", err)
	}
	if err := Encode(out, img, opts); err != nil {
		if cerr := out.Close(); cerr != nil {
			return e.report("export", fmt.Errorf("%w; closing file: %v", err, cerr))
		}
		return e.report("export", err)
	}
	if err := out.Close(); err != nil {
		return e.report("export", fmt.Errorf("closing file: %w", err))
	}
	e.sink.Exported(path)
	return nil
}
