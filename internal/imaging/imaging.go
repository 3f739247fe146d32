// Package imaging prepares scanned images for the vision model: decode,
// downscale to a pixel budget, re-encode as JPEG, base64.
package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/rotisserie/eris"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxDimension keeps slab labels readable while staying well under
// the vision model's size limits. Flatbed scans come in at 2550x3300+.
const DefaultMaxDimension = 1568

const jpegQuality = 85

// EncodeForVision loads the image at path, downscales it so neither
// dimension exceeds maxDim, and returns it JPEG-encoded as base64 along
// with its media type.
func EncodeForVision(path string, maxDim int) (data, mediaType string, err error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	src, err := Decode(path)
	if err != nil {
		return "", "", err
	}

	src = downscale(src, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", "", eris.Wrap(err, "imaging: encode jpeg")
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), "image/jpeg", nil
}

// Decode loads and decodes the image at path. All formats the scanner
// accepts are registered via the blank imports above.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "imaging: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "imaging: decode %s", path)
	}
	return img, nil
}

func downscale(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
