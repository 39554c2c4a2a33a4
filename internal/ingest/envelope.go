package ingest

import (
	"encoding/json"
	"strings"
)

// Envelope is the flat JSON body the firehose publishes. Posts and
// comments share one shape; the presence of a title is what makes a
// message a post.
type Envelope struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	NumComments int     `json:"num_comments"`
	Ups         int     `json:"ups"`
	Downs       int     `json:"downs"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	IsSelf      bool    `json:"is_self"`
	Over18      bool    `json:"over_18"`

	// Comment-only fields.
	LinkID string `json:"link_id"`
	Body   string `json:"body"`
}

func ParseEnvelope(raw []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *Envelope) IsPost() bool {
	return e.Title != nil
}

// ParentHexid strips the "t3_" thing-type prefix from a comment's
// link_id, leaving the parent post's hexid.
func (e *Envelope) ParentHexid() string {
	if i := strings.IndexByte(e.LinkID, '_'); i >= 0 {
		return e.LinkID[i+1:]
	}
	return e.LinkID
}
