package urls

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rarchives/ir/internal/logger"
)

// Expander turns an indirect URL (gallery page, album, image host
// landing page) into the direct media URLs behind it.
type Expander interface {
	Expand(ctx context.Context, url string) ([]string, error)
}

// GalleryDLExpander shells out to gallery-dl, which knows the scraping
// rules for hundreds of hosts. `-g` prints direct URLs one per line
// without downloading.
type GalleryDLExpander struct {
	path string
	log  *logger.Logger
}

func NewGalleryDLExpander(baseLog *logger.Logger) *GalleryDLExpander {
	return &GalleryDLExpander{
		path: "gallery-dl",
		log:  baseLog.With("service", "GalleryDLExpander"),
	}
}

func (e *GalleryDLExpander) Expand(ctx context.Context, url string) ([]string, error) {
	out, err := exec.CommandContext(ctx, e.path, "-g", "-q", url).Output()
	if err != nil {
		return nil, fmt.Errorf("gallery-dl %s: %w", url, err)
	}

	var result []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		result = append(result, line)
	}
	e.log.Debug("Expanded indirect url", "url", url, "children", len(result))
	return result, nil
}
