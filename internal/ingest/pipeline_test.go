package ingest

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/rarchives/ir/internal/logger"
	"github.com/rarchives/ir/internal/types"
	"github.com/rarchives/ir/internal/urls"
)

type fakePostRepo struct {
	byHexid map[string]int64
}

func (f *fakePostRepo) Insert(ctx context.Context, tx *gorm.DB, post *types.Post) (int64, error) {
	return 0, nil
}

func (f *fakePostRepo) GetIDByHexid(ctx context.Context, tx *gorm.DB, hexid string) (int64, error) {
	return f.byHexid[hexid], nil
}

func (f *fakePostRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) { return 0, nil }

type fakeCommentRepo struct {
	inserted []*types.Comment
}

func (f *fakeCommentRepo) Insert(ctx context.Context, tx *gorm.DB, comment *types.Comment) (int64, error) {
	f.inserted = append(f.inserted, comment)
	return int64(len(f.inserted)), nil
}

func (f *fakeCommentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) { return 0, nil }

type fakeImageRepo struct {
	byCleanURL map[string]int64
}

func (f *fakeImageRepo) Upsert(ctx context.Context, tx *gorm.DB, image *types.Image) (int64, bool, error) {
	return 0, false, nil
}

func (f *fakeImageRepo) GetIDBySha1(ctx context.Context, tx *gorm.DB, sha1 string) (int64, error) {
	return 0, nil
}

func (f *fakeImageRepo) GetIDByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) (int64, error) {
	return f.byCleanURL[cleanURL], nil
}

func (f *fakeImageRepo) GetHashByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) ([]byte, error) {
	return nil, nil
}

func (f *fakeImageRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) { return 0, nil }

type fakeMediaURLRepo struct {
	imageBinds []*types.ImageURL
	videoBinds []*types.VideoURL
}

func (f *fakeMediaURLRepo) BindImage(ctx context.Context, tx *gorm.DB, bind *types.ImageURL) error {
	f.imageBinds = append(f.imageBinds, bind)
	return nil
}

func (f *fakeMediaURLRepo) BindVideo(ctx context.Context, tx *gorm.DB, bind *types.VideoURL) error {
	f.videoBinds = append(f.videoBinds, bind)
	return nil
}

func testPipeline(posts *fakePostRepo, comments *fakeCommentRepo, images *fakeImageRepo, binds *fakeMediaURLRepo) *Pipeline {
	log, err := logger.New("development")
	if err != nil {
		panic(err)
	}
	return NewPipeline(
		posts, comments, images, nil, nil, binds,
		nil, nil, nil, nil, urls.DefaultSkipRules(), log,
	)
}

func TestCommentWithoutLinksNotStored(t *testing.T) {
	posts := &fakePostRepo{byHexid: map[string]int64{"abc123": 1}}
	comments := &fakeCommentRepo{}
	p := testPipeline(posts, comments, &fakeImageRepo{}, &fakeMediaURLRepo{})

	p.HandleEnvelope(context.Background(), nil, []byte(
		`{"id": "c0ment", "link_id": "t3_abc123", "body": "no media links here at all"}`,
	))

	if len(comments.inserted) != 0 {
		t.Fatalf("comment with no links was stored %d time(s)", len(comments.inserted))
	}
}

func TestCommentWithOnlyNavigationLinksNotStored(t *testing.T) {
	posts := &fakePostRepo{byHexid: map[string]int64{"abc123": 1}}
	comments := &fakeCommentRepo{}
	p := testPipeline(posts, comments, &fakeImageRepo{}, &fakeMediaURLRepo{})

	p.HandleEnvelope(context.Background(), nil, []byte(
		`{"id": "c0ment", "link_id": "t3_abc123",`+
			` "body": "watch [this](https://youtube.com/watch?v=1)"}`,
	))

	if len(comments.inserted) != 0 {
		t.Fatalf("comment with only skipped links was stored %d time(s)", len(comments.inserted))
	}
}

func TestCommentWithMediaLinkStoredAndBound(t *testing.T) {
	posts := &fakePostRepo{byHexid: map[string]int64{"abc123": 1}}
	comments := &fakeCommentRepo{}
	images := &fakeImageRepo{byCleanURL: map[string]int64{"http://i.example.com/a.jpg": 5}}
	binds := &fakeMediaURLRepo{}
	p := testPipeline(posts, comments, images, binds)

	p.HandleEnvelope(context.Background(), nil, []byte(
		`{"id": "c0ment", "link_id": "t3_abc123", "author": "bob",`+
			` "body": "see [pic](http://i.example.com/a.jpg)"}`,
	))

	if len(comments.inserted) != 1 {
		t.Fatalf("comment stored %d time(s), want 1", len(comments.inserted))
	}
	if comments.inserted[0].PostID != 1 || comments.inserted[0].Hexid != "c0ment" {
		t.Fatalf("unexpected comment row: %+v", comments.inserted[0])
	}
	if len(binds.imageBinds) != 1 {
		t.Fatalf("got %d image binds, want 1", len(binds.imageBinds))
	}
	bind := binds.imageBinds[0]
	if bind.ImageID != 5 || bind.CommentID == nil || *bind.CommentID != 1 {
		t.Fatalf("unexpected bind: %+v", bind)
	}
}

func TestCommentUnderUnindexedPostDropped(t *testing.T) {
	posts := &fakePostRepo{byHexid: map[string]int64{}}
	comments := &fakeCommentRepo{}
	p := testPipeline(posts, comments, &fakeImageRepo{}, &fakeMediaURLRepo{})

	p.HandleEnvelope(context.Background(), nil, []byte(
		`{"id": "c0ment", "link_id": "t3_unknown",`+
			` "body": "see [pic](http://i.example.com/a.jpg)"}`,
	))

	if len(comments.inserted) != 0 {
		t.Fatalf("orphan comment stored %d time(s)", len(comments.inserted))
	}
}
