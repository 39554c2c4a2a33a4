package types

import (
	"encoding/json"
)

// Search hits are a tagged sum: {type: "post"|"comment"} carrying an
// item that is itself tagged {type: "image"|"video"}.

type SearchItem interface {
	itemJSON() map[string]any
}

type ImageItem struct {
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
	Sha1     string `json:"sha1"`
	Thumb    string `json:"thumb"`
	AlbumURL string `json:"album_url"`
}

func (i ImageItem) itemJSON() map[string]any {
	return map[string]any{
		"type":      "image",
		"url":       i.URL,
		"width":     i.Width,
		"height":    i.Height,
		"size":      i.Size,
		"sha1":      i.Sha1,
		"thumb":     i.Thumb,
		"album_url": i.AlbumURL,
	}
}

type VideoItem struct {
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
	Sha1     string `json:"sha1"`
	VideoID  int64  `json:"video_id"`
	Bitrate  int    `json:"bitrate"`
	Codec    string `json:"codec"`
	Format   string `json:"format"`
	Duration int    `json:"duration"`
	Frames   int    `json:"frames"`
}

func (v VideoItem) itemJSON() map[string]any {
	return map[string]any{
		"type":     "video",
		"url":      v.URL,
		"width":    v.Width,
		"height":   v.Height,
		"size":     v.Size,
		"sha1":     v.Sha1,
		"video_id": v.VideoID,
		"bitrate":  v.Bitrate,
		"codec":    v.Codec,
		"format":   v.Format,
		"duration": v.Duration,
		"frames":   v.Frames,
	}
}

type SearchHit interface {
	hitJSON() map[string]any
}

type PostSearchResult struct {
	Hexid     string
	Title     string
	Text      string
	Author    string
	Permalink string
	Subreddit string
	Comments  int
	Ups       int
	Downs     int
	Created   int64
	Item      SearchItem
}

func (p PostSearchResult) hitJSON() map[string]any {
	return map[string]any{
		"type":      "post",
		"hexid":     p.Hexid,
		"title":     p.Title,
		"text":      p.Text,
		"author":    p.Author,
		"permalink": p.Permalink,
		"subreddit": p.Subreddit,
		"comments":  p.Comments,
		"ups":       p.Ups,
		"downs":     p.Downs,
		"created":   p.Created,
		"item":      p.Item.itemJSON(),
	}
}

type CommentSearchResult struct {
	Hexid     string
	PostID    string // hexid of the parent post
	Body      string
	Author    string
	Permalink string
	Subreddit string
	Ups       int
	Downs     int
	Created   int64
	Item      SearchItem
}

func (c CommentSearchResult) hitJSON() map[string]any {
	return map[string]any{
		"type":      "comment",
		"hexid":     c.Hexid,
		"post_id":   c.PostID,
		"body":      c.Body,
		"author":    c.Author,
		"permalink": c.Permalink,
		"subreddit": c.Subreddit,
		"ups":       c.Ups,
		"downs":     c.Downs,
		"created":   c.Created,
		"item":      c.Item.itemJSON(),
	}
}

// AlbumResults is the album-search payload: the stored children of a
// previously ingested album. An album with nothing stored is an empty
// list, not an error.
type AlbumImage struct {
	Thumb  string `json:"thumb"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type AlbumResults struct {
	URL    string       `json:"url"`
	Images []AlbumImage `json:"images"`
}

type SearchResults struct {
	URL         string
	Hits        []SearchHit
	Error       string
	ResultCount int
}

func NewSearchResults(url string, hits []SearchHit) SearchResults {
	return SearchResults{URL: url, Hits: hits, ResultCount: len(hits)}
}

func (r SearchResults) MarshalJSON() ([]byte, error) {
	hits := make([]map[string]any, 0, len(r.Hits))
	for _, h := range r.Hits {
		hits = append(hits, h.hitJSON())
	}
	var errField any
	if r.Error != "" {
		errField = r.Error
	}
	return json.Marshal(map[string]any{
		"url":          r.URL,
		"hits":         hits,
		"error":        errField,
		"result_count": r.ResultCount,
	})
}
