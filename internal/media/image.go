package media

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes any of the supported still formats
// (jpeg/png/gif/bmp/tiff/webp, registered above).
func DecodeImage(buf []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(buf))
}

// Thumbnail scales img down so its longest edge is at most maxEdge.
// Images already small enough are returned as-is.
func Thumbnail(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}
	if w >= h {
		h = h * maxEdge / w
		w = maxEdge
	} else {
		w = w * maxEdge / h
		h = maxEdge
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Sha1Hex returns the lowercase hex sha1 of buf, the natural key for
// media dedup.
func Sha1Hex(buf []byte) string {
	sum := sha1.Sum(buf)
	return hex.EncodeToString(sum[:])
}
