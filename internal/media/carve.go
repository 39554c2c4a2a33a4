package media

import (
	"bytes"
	"io"
)

// jpegChunkSize is the read granularity when carving the ffmpeg
// image2pipe stream.
const jpegChunkSize = 1024 * 24

// scanJPEGStream splits a stream of concatenated JPEGs on the EOI
// marker (0xFF 0xD9) and calls emit with each complete image. ffmpeg's
// image2pipe output carries no length prefixes, and 0xFF inside entropy
// data is always stuffed, so EOI only occurs at real image boundaries.
func scanJPEGStream(r io.Reader, emit func(frame []byte) error) error {
	var cur bytes.Buffer
	chunk := make([]byte, jpegChunkSize)
	prevFF := false

	for {
		n, readErr := r.Read(chunk)
		if n > 0 {
			last := 0
			for offset := 0; offset < n; offset++ {
				b := chunk[offset]
				if b == 0xFF {
					prevFF = true
					continue
				}
				if prevFF && b == 0xD9 {
					cur.Write(chunk[last : offset+1])
					if err := emit(append([]byte(nil), cur.Bytes()...)); err != nil {
						return err
					}
					cur.Reset()
					last = offset + 1
				}
				prevFF = false
			}
			cur.Write(chunk[last:n])
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
