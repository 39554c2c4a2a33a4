package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/rarchives/ir/internal/hash"
)

func encodeTestJPEG(t *testing.T, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: seed + uint8(x*3), G: uint8(y * 7), B: seed, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestScanJPEGStreamCarvesEveryImage(t *testing.T) {
	var stream bytes.Buffer
	want := 5
	for i := 0; i < want; i++ {
		stream.Write(encodeTestJPEG(t, uint8(i*40)))
	}

	var got [][]byte
	err := scanJPEGStream(bytes.NewReader(stream.Bytes()), func(frame []byte) error {
		got = append(got, frame)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != want {
		t.Fatalf("carved %d frames, want %d", len(got), want)
	}
	for i, frame := range got {
		if _, err := jpeg.Decode(bytes.NewReader(frame)); err != nil {
			t.Fatalf("frame %d does not decode: %v", i, err)
		}
		if frame[len(frame)-2] != 0xFF || frame[len(frame)-1] != 0xD9 {
			t.Fatalf("frame %d does not end on EOI", i)
		}
	}
}

func TestScanJPEGStreamMarkerAcrossChunkBoundary(t *testing.T) {
	// Force the EOI marker to straddle the 24 KiB read boundary by
	// padding the first image's tail right up against it.
	first := encodeTestJPEG(t, 1)
	second := encodeTestJPEG(t, 200)

	pad := jpegChunkSize - len(first) + 1 // EOI's 0xD9 lands at chunk start
	if pad < 0 {
		t.Skip("test image larger than chunk size")
	}
	var stream bytes.Buffer
	stream.Write(first[:len(first)-2])
	stream.Write(bytes.Repeat([]byte{0x00}, pad))
	stream.Write([]byte{0xFF, 0xD9})
	stream.Write(second)

	var got int
	err := scanJPEGStream(bytes.NewReader(stream.Bytes()), func(frame []byte) error {
		got++
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got != 2 {
		t.Fatalf("carved %d frames, want 2", got)
	}
}

func encodeReversedJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(255 - x*8)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestFrameDedupIsStable(t *testing.T) {
	a := encodeTestJPEG(t, 10)
	b := encodeReversedJPEG(t)

	hashes := func() []string {
		var stream bytes.Buffer
		stream.Write(a)
		stream.Write(b)
		stream.Write(a) // duplicate frame, must collapse
		seen := make(map[string]struct{})
		var order []string
		err := scanJPEGStream(bytes.NewReader(stream.Bytes()), func(frame []byte) error {
			img, err := jpeg.Decode(bytes.NewReader(frame))
			if err != nil {
				return err
			}
			h := string(hash.Dhash(Thumbnail(img, 500)))
			if _, dup := seen[h]; !dup {
				seen[h] = struct{}{}
				order = append(order, h)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		return order
	}

	run1 := hashes()
	run2 := hashes()
	if len(run1) != 2 {
		t.Fatalf("expected 2 distinct frames, got %d", len(run1))
	}
	for i := range run1 {
		if run1[i] != run2[i] {
			t.Fatalf("frame hashes differ across runs")
		}
	}
	if len(run1[0]) != hash.Size {
		t.Fatalf("frame hash length %d, want %d", len(run1[0]), hash.Size)
	}
}
