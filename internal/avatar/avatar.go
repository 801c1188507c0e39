// Package avatar supplies the raster collaborators of the export pipeline:
// loading avatar bytes from disk with a procedural placeholder fallback,
// normalizing arbitrary input images to the canonical card raster, the logo
// overlay applied to native exports, and data-URI encoding for embedding the
// clean avatar in the native envelope.
package avatar

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Canonical card raster dimensions.
const (
	CardWidth  = 400
	CardHeight = 600
)

// ErrUndecodable reports input bytes that no registered image codec accepts.
var ErrUndecodable = errors.New("avatar image cannot be decoded")

// Load reads avatar bytes from path. A missing file is not an error: the
// fallback is a procedurally generated placeholder derived from name. Any
// other read failure is returned to the caller.
func Load(path, name string) ([]byte, error) {
	if path == "" {
		return Placeholder(name), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Placeholder(name), nil
		}
		return nil, fmt.Errorf("reading avatar %s: %w", path, err)
	}
	return data, nil
}

// Normalize decodes data with any registered codec (PNG, JPEG, or the first
// GIF frame), scales it to cover the canonical card raster, and re-encodes
// it as PNG. The result is always a valid single-frame PNG, which is the
// base buffer the chunk codec operates on.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, coverCrop(src.Bounds()), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding normalized avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// coverCrop returns the largest centered sub-rectangle of src with the card
// aspect ratio, so scaling fills the target without distortion.
func coverCrop(src image.Rectangle) image.Rectangle {
	srcW, srcH := src.Dx(), src.Dy()
	if srcW == 0 || srcH == 0 {
		return src
	}

	// Compare aspect ratios without floating point: srcW/srcH vs CardWidth/CardHeight.
	if srcW*CardHeight > CardWidth*srcH {
		// Source is wider: crop horizontally.
		cropW := srcH * CardWidth / CardHeight
		x0 := src.Min.X + (srcW-cropW)/2
		return image.Rect(x0, src.Min.Y, x0+cropW, src.Max.Y)
	}
	// Source is taller or equal: crop vertically.
	cropH := srcW * CardHeight / CardWidth
	y0 := src.Min.Y + (srcH-cropH)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+cropH)
}

// DataURI wraps PNG bytes in a data:image/png;base64 URI.
func DataURI(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}
