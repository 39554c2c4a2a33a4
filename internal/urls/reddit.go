package urls

import (
	"context"
	"fmt"

	"github.com/lrstanley/go-ytdlp"

	"github.com/rarchives/ir/internal/logger"
)

// RedditResolver maps a v.redd.it page onto a directly fetchable
// format URL. Reddit serves DASH segments; yt-dlp enumerates the
// formats and the widest one wins.
type RedditResolver struct {
	log *logger.Logger
}

func NewRedditResolver(baseLog *logger.Logger) *RedditResolver {
	return &RedditResolver{log: baseLog.With("service", "RedditResolver")}
}

func (r *RedditResolver) Resolve(ctx context.Context, url string) (string, error) {
	result, err := ytdlp.New().
		DumpJSON().
		SkipDownload().
		Run(ctx, url)
	if err != nil {
		return "", fmt.Errorf("yt-dlp %s: %w", url, err)
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return "", fmt.Errorf("parse yt-dlp output for %s: %w", url, err)
	}

	var bestURL string
	bestWidth := -1.0
	for _, info := range infos {
		for _, f := range info.Formats {
			width := 0.0
			if f.Width != nil {
				width = *f.Width
			}
			if f.URL != "" && width > bestWidth {
				bestWidth = width
				bestURL = f.URL
			}
		}
	}
	if bestURL == "" {
		return "", fmt.Errorf("no formats for %s", url)
	}
	r.log.Debug("Resolved reddit video", "url", url, "width", bestWidth)
	return bestURL, nil
}
