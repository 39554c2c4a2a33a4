package hash

import (
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// 12x12 horizontal-neighbor comparisons = 144 bits = 18 bytes. Stored
// rows and radius thresholds are tuned to this width; changing it
// requires a full re-index.
const (
	gridW = 12
	gridH = 12

	// Size is the dhash length in bytes.
	Size = 18
)

// Dhash computes the difference hash of an image: grayscale, resample
// to 13x12 (CatmullRom, antialiased), then one bit per pixel comparing
// each cell to its right-hand neighbor (1 when left < right). Bits are
// flattened row-major and packed most-significant-bit first.
func Dhash(img image.Image) []byte {
	small := image.NewGray(image.Rect(0, 0, gridW+1, gridH))
	draw.CatmullRom.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	out := make([]byte, Size)
	for y := 0; y < gridH; y++ {
		row := small.Pix[y*small.Stride:]
		for x := 0; x < gridW; x++ {
			if row[x] < row[x+1] {
				i := y*gridW + x
				out[i/8] |= 1 << (7 - uint(i%8))
			}
		}
	}
	return out
}

// Distance is the Hamming distance between two dhashes.
func Distance(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0
	for i := 0; i < n; i++ {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}
