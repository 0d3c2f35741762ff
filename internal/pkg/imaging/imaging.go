// Package imaging provides the pixel-level operations the ingestion pipeline
// needs: decoding uploaded bytes, computing a perceptual similarity hash and
// rendering thumbnails.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Decode parses raw image bytes. PNG, JPEG, GIF and WebP are accepted.
func Decode(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// PerceptualHash computes the 64-bit average hash of img. Identical pixel
// content always produces the same value, which is what the dedup index keys on.
func PerceptualHash(img image.Image) (uint64, error) {
	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return 0, fmt.Errorf("failed to hash image: %w", err)
	}
	return hash.GetHash(), nil
}

// Thumbnail scales img down to fit within maxWidth x maxHeight, preserving
// aspect ratio, and returns it JPEG-encoded. Images already within bounds are
// re-encoded without scaling.
func Thumbnail(img image.Image, maxWidth, maxHeight int) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxWidth || h > maxHeight {
		scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
