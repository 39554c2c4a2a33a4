package services

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/rarchives/ir/internal/repos"
	"github.com/rarchives/ir/internal/types"
)

func ns(s string) sql.NullString  { return sql.NullString{String: s, Valid: true} }
func ni(n int64) sql.NullInt64    { return sql.NullInt64{Int64: n, Valid: true} }

func TestAssembleImageHitsPostEnvelope(t *testing.T) {
	rows := []repos.ImageResultRow{{
		ImageID:       42,
		Sha1:          "abc",
		Width:         800,
		Height:        600,
		Bytes:         1234,
		URL:           "http://i.example.com/a.jpg",
		PostHexid:     ns("p1"),
		PostTitle:     ns("a title"),
		PostAuthor:    ns("alice"),
		PostPermalink: ns("/r/pics/comments/p1/"),
		PostSubreddit: ns("pics"),
		PostComments:  ni(3),
		PostUps:       ni(10),
		PostCreated:   ni(1500000000),
	}}

	hits := assembleImageHits(rows, "static")
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	post, ok := hits[0].(types.PostSearchResult)
	if !ok {
		t.Fatalf("hit is %T, want PostSearchResult", hits[0])
	}
	if post.Hexid != "p1" || post.Author != "alice" || post.Ups != 10 {
		t.Fatalf("unexpected post fields: %+v", post)
	}
	item, ok := post.Item.(types.ImageItem)
	if !ok {
		t.Fatalf("item is %T, want ImageItem", post.Item)
	}
	if item.Thumb != "static/thumbs/im/4/2/42.jpg" {
		t.Fatalf("thumb = %q", item.Thumb)
	}
}

func TestAssembleImageHitsCommentEnvelope(t *testing.T) {
	rows := []repos.ImageResultRow{{
		ImageID:       7,
		URL:           "http://i.example.com/b.png",
		PostHexid:     ns("p1"),
		PostPermalink: ns("/r/pics/comments/p1/"),
		PostSubreddit: ns("pics"),
		CommentHexid:  ns("c9"),
		CommentAuthor: ns("bob"),
		CommentBody:   ns("look [here](http://i.example.com/b.png)"),
		CommentUps:    ni(2),
	}}

	hits := assembleImageHits(rows, "static")
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	comment, ok := hits[0].(types.CommentSearchResult)
	if !ok {
		t.Fatalf("hit is %T, want CommentSearchResult", hits[0])
	}
	if comment.Hexid != "c9" || comment.PostID != "p1" || comment.Author != "bob" {
		t.Fatalf("unexpected comment fields: %+v", comment)
	}
	if comment.Permalink != "/r/pics/comments/p1/c9" {
		t.Fatalf("permalink = %q", comment.Permalink)
	}
}

func TestAssembleImageHitsDropsContextlessRows(t *testing.T) {
	rows := []repos.ImageResultRow{{ImageID: 1, URL: "http://x.com/a.jpg"}}
	if hits := assembleImageHits(rows, "static"); len(hits) != 0 {
		t.Fatalf("contextless row produced %d hits", len(hits))
	}
}

func TestSearchResultsJSONShape(t *testing.T) {
	results := types.NewSearchResults("http://x.com/a.jpg", []types.SearchHit{
		types.PostSearchResult{
			Hexid: "p1",
			Item:  types.ImageItem{URL: "http://x.com/a.jpg", Sha1: "abc"},
		},
	})

	raw, err := json.Marshal(results)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["result_count"].(float64) != 1 {
		t.Fatalf("result_count = %v", doc["result_count"])
	}
	if doc["error"] != nil {
		t.Fatalf("error = %v", doc["error"])
	}
	hit := doc["hits"].([]any)[0].(map[string]any)
	if hit["type"] != "post" {
		t.Fatalf("hit type = %v", hit["type"])
	}
	if hit["item"].(map[string]any)["type"] != "image" {
		t.Fatalf("item type missing")
	}
}
