// Package clipboard publishes rendered results to the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/png"
)

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

// WriteImage encodes the provided image as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return writeImage(buf.Bytes(), nil)
}

// WriteRender publishes an encoded render. PNG data is passed through.
// Other formats are offered under their own MIME type where the backend
// can, alongside a PNG of their first frame.
func WriteRender(data []byte, mime string) error {
	if mime == "image/png" {
		return writeImage(data, nil)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s for clipboard: %w", mime, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return writeImage(buf.Bytes(), map[string][]byte{mime: data})
}
