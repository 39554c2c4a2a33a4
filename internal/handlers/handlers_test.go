package handlers

import (
  "context"
  "os"
  "testing"
  "github.com/gin-gonic/gin"
  "gorm.io/gorm"
  "github.com/rarchives/ir/internal/cache"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/repos"
  "github.com/rarchives/ir/internal/services"
  "github.com/rarchives/ir/internal/types"
)

func TestMain(m *testing.M) {
  gin.SetMode(gin.TestMode)
  os.Exit(m.Run())
}

// Stub repos back a real SearchService so handler tests exercise the
// full response path without a database.

type stubPostRepo struct{ posts int64 }

func (s *stubPostRepo) Insert(ctx context.Context, tx *gorm.DB, post *types.Post) (int64, error) {
  return 0, nil
}
func (s *stubPostRepo) GetIDByHexid(ctx context.Context, tx *gorm.DB, hexid string) (int64, error) {
  return 0, nil
}
func (s *stubPostRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) { return s.posts, nil }

type stubCommentRepo struct{ comments int64 }

func (s *stubCommentRepo) Insert(ctx context.Context, tx *gorm.DB, comment *types.Comment) (int64, error) {
  return 0, nil
}
func (s *stubCommentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  return s.comments, nil
}

type stubImageRepo struct{ images int64 }

func (s *stubImageRepo) Upsert(ctx context.Context, tx *gorm.DB, image *types.Image) (int64, bool, error) {
  return 0, false, nil
}
func (s *stubImageRepo) GetIDBySha1(ctx context.Context, tx *gorm.DB, sha1 string) (int64, error) {
  return 0, nil
}
func (s *stubImageRepo) GetIDByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) (int64, error) {
  return 0, nil
}
func (s *stubImageRepo) GetHashByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) ([]byte, error) {
  return nil, nil
}
func (s *stubImageRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) { return s.images, nil }

type stubVideoRepo struct {
  videos   int64
  frames   int64
  frameIDs map[int64][]int64
}

func (s *stubVideoRepo) Upsert(ctx context.Context, tx *gorm.DB, video *types.Video) (int64, bool, error) {
  return 0, false, nil
}
func (s *stubVideoRepo) GetIDBySha1(ctx context.Context, tx *gorm.DB, sha1 string) (int64, error) {
  return 0, nil
}
func (s *stubVideoRepo) GetIDByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) (int64, error) {
  return 0, nil
}
func (s *stubVideoRepo) InsertFrames(ctx context.Context, tx *gorm.DB, videoID int64, hashes [][]byte) ([]int64, error) {
  return nil, nil
}
func (s *stubVideoRepo) GetFrameIDs(ctx context.Context, tx *gorm.DB, videoID int64) ([]int64, error) {
  return s.frameIDs[videoID], nil
}
func (s *stubVideoRepo) GetFrameHashes(ctx context.Context, tx *gorm.DB, videoID int64) ([][]byte, error) {
  return nil, nil
}
func (s *stubVideoRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) { return s.videos, nil }
func (s *stubVideoRepo) FrameCount(ctx context.Context, tx *gorm.DB) (int64, error) {
  return s.frames, nil
}

type stubAlbumRepo struct{ albums int64 }

func (s *stubAlbumRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, url string) (int64, error) {
  return 0, nil
}
func (s *stubAlbumRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) { return s.albums, nil }

type stubSearchRepo struct {
  albumIDs  map[string][]int64
  imageRows []repos.ImageResultRow
}

func (s *stubSearchRepo) SimilarImageIDs(ctx context.Context, tx *gorm.DB, hash []byte, maxDistance int) ([]int64, error) {
  return nil, nil
}
func (s *stubSearchRepo) SimilarVideoIDs(ctx context.Context, tx *gorm.DB, hashes [][]byte, maxDistance, minFrames int) ([]int64, error) {
  return nil, nil
}
func (s *stubSearchRepo) ImageResults(ctx context.Context, tx *gorm.DB, imageIDs []int64) ([]repos.ImageResultRow, error) {
  return s.imageRows, nil
}
func (s *stubSearchRepo) VideoResults(ctx context.Context, tx *gorm.DB, videoIDs []int64) ([]repos.VideoResultRow, error) {
  return nil, nil
}
func (s *stubSearchRepo) ImageIDsByAuthor(ctx context.Context, tx *gorm.DB, author string) ([]int64, error) {
  return nil, nil
}
func (s *stubSearchRepo) ImageIDsByText(ctx context.Context, tx *gorm.DB, text string) ([]int64, error) {
  return nil, nil
}
func (s *stubSearchRepo) ImageIDsByAlbumURL(ctx context.Context, tx *gorm.DB, albumURL string) ([]int64, error) {
  return s.albumIDs[albumURL], nil
}
func (s *stubSearchRepo) Subreddits(ctx context.Context, tx *gorm.DB) ([]repos.SubredditCount, error) {
  return nil, nil
}
func (s *stubSearchRepo) RecentVideoIDs(ctx context.Context, tx *gorm.DB, limit int) ([]int64, error) {
  return nil, nil
}

type testDeps struct {
  search *stubSearchRepo
  videos *stubVideoRepo
}

func newTestService(deps testDeps) (*services.SearchService, cache.Cache) {
  log, err := logger.New("development")
  if err != nil {
    panic(err)
  }
  searchRepo := deps.search
  if searchRepo == nil {
    searchRepo = &stubSearchRepo{}
  }
  videoRepo := deps.videos
  if videoRepo == nil {
    videoRepo = &stubVideoRepo{}
  }
  svc := services.NewSearchService(
    &stubImageRepo{images: 3}, videoRepo, &stubPostRepo{posts: 7},
    &stubCommentRepo{comments: 2}, &stubAlbumRepo{albums: 1}, searchRepo,
    nil, nil, nil, "static", log,
  )
  return svc, cache.NewMemory()
}
