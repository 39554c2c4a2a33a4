package media

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rarchives/ir/internal/logger"
)

const (
	KindImage = "im"
	KindVideo = "vid"

	imageThumbEdge = 500
)

// ThumbStore lays thumbnails out as
// <root>/thumbs/<kind>/<d1>/<d2>/<id>.jpg where d1/d2 are the first two
// decimal digits of the id ("0" when the id is a single digit). The
// layout is part of the on-disk contract; existing trees depend on it.
type ThumbStore struct {
	root      string
	frameEdge int
	log       *logger.Logger
}

func NewThumbStore(staticRoot string, frameEdge int, baseLog *logger.Logger) *ThumbStore {
	return &ThumbStore{
		root:      staticRoot,
		frameEdge: frameEdge,
		log:       baseLog.With("service", "ThumbStore"),
	}
}

// ThumbRel is the URL-facing relative path for a thumbnail.
func ThumbRel(staticRoot, kind string, id int64) string {
	s := strconv.FormatInt(id, 10)
	d1 := s[:1]
	d2 := "0"
	if id >= 10 {
		d2 = s[1:2]
	}
	return filepath.Join(staticRoot, "thumbs", kind, d1, d2, s+".jpg")
}

func (t *ThumbStore) Rel(kind string, id int64) string {
	return ThumbRel(t.root, kind, id)
}

// WriteImageThumb saves a still thumbnail, long edge capped at 500.
func (t *ThumbStore) WriteImageThumb(id int64, img image.Image) error {
	return t.write(KindImage, id, Thumbnail(img, imageThumbEdge))
}

// WriteFrameThumb saves a video frame; frames were already resized to
// the configured TN edge at extraction time.
func (t *ThumbStore) WriteFrameThumb(id int64, img image.Image) error {
	return t.write(KindVideo, id, img)
}

func (t *ThumbStore) write(kind string, id int64, img image.Image) error {
	path := t.Rel(kind, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create thumb dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create thumb: %w", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		return fmt.Errorf("encode thumb: %w", err)
	}
	return nil
}
