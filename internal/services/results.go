package services

import (
	"github.com/rarchives/ir/internal/media"
	"github.com/rarchives/ir/internal/repos"
	"github.com/rarchives/ir/internal/types"
)

// assembleImageHits turns result rows into the post/comment envelopes
// the API serves. A binding with neither post nor comment context (a
// bare album member, or a URL indexed at query time) has nothing to
// show the user and is dropped.
func assembleImageHits(rows []repos.ImageResultRow, staticRoot string) []types.SearchHit {
	hits := make([]types.SearchHit, 0, len(rows))
	for _, row := range rows {
		item := types.ImageItem{
			URL:      row.URL,
			Width:    row.Width,
			Height:   row.Height,
			Size:     row.Bytes,
			Sha1:     row.Sha1,
			Thumb:    media.ThumbRel(staticRoot, media.KindImage, row.ImageID),
			AlbumURL: row.AlbumURL.String,
		}
		if hit, ok := envelope(imageContext(row), item); ok {
			hits = append(hits, hit)
		}
	}
	return hits
}

func assembleVideoHits(rows []repos.VideoResultRow, staticRoot string) []types.SearchHit {
	hits := make([]types.SearchHit, 0, len(rows))
	for _, row := range rows {
		item := types.VideoItem{
			URL:      row.URL,
			Width:    row.Width,
			Height:   row.Height,
			Size:     row.Bytes,
			Sha1:     row.Sha1,
			VideoID:  row.VideoID,
			Bitrate:  row.Bitrate,
			Codec:    row.Codec,
			Format:   row.Format,
			Duration: row.Duration,
			Frames:   row.Frames,
		}
		if hit, ok := envelope(videoContext(row), item); ok {
			hits = append(hits, hit)
		}
	}
	return hits
}

// hitContext is the shared shape of the left-joined post/comment
// columns, so image and video rows assemble through one path.
type hitContext struct {
	postHexid     string
	postValid     bool
	title         string
	text          string
	author        string
	permalink     string
	subreddit     string
	comments      int
	postUps       int
	postDowns     int
	postCreated   int64
	commentHexid  string
	commentValid  bool
	commentAuthor string
	body          string
	commentUps    int
	commentDowns  int
	commentCreated int64
}

func imageContext(row repos.ImageResultRow) hitContext {
	return hitContext{
		postHexid:      row.PostHexid.String,
		postValid:      row.PostHexid.Valid,
		title:          row.PostTitle.String,
		text:           row.PostText.String,
		author:         row.PostAuthor.String,
		permalink:      row.PostPermalink.String,
		subreddit:      row.PostSubreddit.String,
		comments:       int(row.PostComments.Int64),
		postUps:        int(row.PostUps.Int64),
		postDowns:      int(row.PostDowns.Int64),
		postCreated:    row.PostCreated.Int64,
		commentHexid:   row.CommentHexid.String,
		commentValid:   row.CommentHexid.Valid,
		commentAuthor:  row.CommentAuthor.String,
		body:           row.CommentBody.String,
		commentUps:     int(row.CommentUps.Int64),
		commentDowns:   int(row.CommentDowns.Int64),
		commentCreated: row.CommentCreated.Int64,
	}
}

func videoContext(row repos.VideoResultRow) hitContext {
	return hitContext{
		postHexid:      row.PostHexid.String,
		postValid:      row.PostHexid.Valid,
		title:          row.PostTitle.String,
		text:           row.PostText.String,
		author:         row.PostAuthor.String,
		permalink:      row.PostPermalink.String,
		subreddit:      row.PostSubreddit.String,
		comments:       int(row.PostComments.Int64),
		postUps:        int(row.PostUps.Int64),
		postDowns:      int(row.PostDowns.Int64),
		postCreated:    row.PostCreated.Int64,
		commentHexid:   row.CommentHexid.String,
		commentValid:   row.CommentHexid.Valid,
		commentAuthor:  row.CommentAuthor.String,
		body:           row.CommentBody.String,
		commentUps:     int(row.CommentUps.Int64),
		commentDowns:   int(row.CommentDowns.Int64),
		commentCreated: row.CommentCreated.Int64,
	}
}

func envelope(ctx hitContext, item types.SearchItem) (types.SearchHit, bool) {
	if ctx.commentValid {
		return types.CommentSearchResult{
			Hexid:     ctx.commentHexid,
			PostID:    ctx.postHexid,
			Body:      ctx.body,
			Author:    ctx.commentAuthor,
			Permalink: ctx.permalink + ctx.commentHexid,
			Subreddit: ctx.subreddit,
			Ups:       ctx.commentUps,
			Downs:     ctx.commentDowns,
			Created:   ctx.commentCreated,
			Item:      item,
		}, true
	}
	if ctx.postValid {
		return types.PostSearchResult{
			Hexid:     ctx.postHexid,
			Title:     ctx.title,
			Text:      ctx.text,
			Author:    ctx.author,
			Permalink: ctx.permalink,
			Subreddit: ctx.subreddit,
			Comments:  ctx.comments,
			Ups:       ctx.postUps,
			Downs:     ctx.postDowns,
			Created:   ctx.postCreated,
			Item:      item,
		}, true
	}
	return nil, false
}
