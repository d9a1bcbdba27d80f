// Package clipboard publishes edited images to the system clipboard and
// reads images back from it. Images travel as PNG.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/example/pixeledit/internal/logging"
)

// ErrNoImage is returned by ReadImage when the clipboard holds no image.
var ErrNoImage = errors.New("clipboard does not contain image data")

// WriteImage encodes img as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	if err := writePNG(buf.Bytes()); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	logging.Logger().Debug("image copied to clipboard", "bytes", buf.Len())
	return nil
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	data, err := readPNG()
	if err != nil {
		return nil, fmt.Errorf("clipboard: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	return png.Decode(bytes.NewReader(data))
}
