package repos

import (
  "context"
  "fmt"
  "strings"
  "gorm.io/gorm"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/types"
)

type VideoRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, video *types.Video) (int64, bool, error)
  GetIDBySha1(ctx context.Context, tx *gorm.DB, sha1 string) (int64, error)
  GetIDByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) (int64, error)
  InsertFrames(ctx context.Context, tx *gorm.DB, videoID int64, hashes [][]byte) ([]int64, error)
  GetFrameIDs(ctx context.Context, tx *gorm.DB, videoID int64) ([]int64, error)
  GetFrameHashes(ctx context.Context, tx *gorm.DB, videoID int64) ([][]byte, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
  FrameCount(ctx context.Context, tx *gorm.DB) (int64, error)
}

type videoRepo struct {
  db          *gorm.DB
  log         *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
  repoLog := baseLog.With("repo", "VideoRepo")
  return &videoRepo{db: db, log: repoLog}
}

func (r *videoRepo) Upsert(ctx context.Context, tx *gorm.DB, video *types.Video) (int64, bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  row := transaction.WithContext(ctx).Raw(
    `INSERT INTO videos (sha1, width, height, bitrate, codec, format, duration, frames, bytes, probe)
     VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
     ON CONFLICT (sha1) DO NOTHING
     RETURNING id`,
    video.Sha1, video.Width, video.Height, video.Bitrate, video.Codec,
    video.Format, video.Duration, video.Frames, video.Bytes, video.Probe,
  ).Row()
  if err := row.Scan(&id); err != nil {
    conflict, scanErr := insertConflict(err)
    if !conflict {
      return 0, false, scanErr
    }
    existing, lookupErr := r.GetIDBySha1(ctx, transaction, video.Sha1)
    if lookupErr != nil {
      return 0, false, lookupErr
    }
    return existing, false, nil
  }
  return id, true, nil
}

func (r *videoRepo) GetIDBySha1(ctx context.Context, tx *gorm.DB, sha1 string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  err := transaction.WithContext(ctx).
    Model(&types.Video{}).
    Select("id").
    Where("sha1 = ?", sha1).
    Take(&id).Error
  if err == gorm.ErrRecordNotFound {
    return 0, nil
  }
  if err != nil {
    return 0, err
  }
  return id, nil
}

func (r *videoRepo) GetIDByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  err := transaction.WithContext(ctx).
    Model(&types.VideoURL{}).
    Select("videoid").
    Where("clean_url = ?", cleanURL).
    Limit(1).
    Take(&id).Error
  if err == gorm.ErrRecordNotFound {
    return 0, nil
  }
  if err != nil {
    return 0, err
  }
  return id, nil
}

// InsertFrames stores the sampled frame hashes for a video in one
// multi-row insert and returns the new frame ids in insertion order,
// which is the sampling order. Thumbnail filenames are keyed on these
// ids.
func (r *videoRepo) InsertFrames(ctx context.Context, tx *gorm.DB, videoID int64, hashes [][]byte) ([]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(hashes) == 0 {
    return nil, nil
  }
  args := make([]interface{}, 0, len(hashes)*2)
  for _, h := range hashes {
    args = append(args, h, videoID)
  }
  rows, err := transaction.WithContext(ctx).Raw(frameInsertSQL(len(hashes)), args...).Rows()
  if err != nil {
    return nil, err
  }
  defer rows.Close()

  ids := make([]int64, 0, len(hashes))
  for rows.Next() {
    var id int64
    if err := rows.Scan(&id); err != nil {
      return nil, err
    }
    ids = append(ids, id)
  }
  if err := rows.Err(); err != nil {
    return nil, err
  }
  if len(ids) != len(hashes) {
    return nil, fmt.Errorf("inserted %d frames, got %d ids back", len(hashes), len(ids))
  }
  return ids, nil
}

// RETURNING on a multi-row VALUES insert yields ids in the order the
// rows were given.
func frameInsertSQL(n int) string {
  var b strings.Builder
  b.WriteString("INSERT INTO videoframes (hash, videoid) VALUES ")
  for i := 0; i < n; i++ {
    if i > 0 {
      b.WriteString(", ")
    }
    b.WriteString("(?, ?)")
  }
  b.WriteString(" RETURNING id")
  return b.String()
}

func (r *videoRepo) GetFrameIDs(ctx context.Context, tx *gorm.DB, videoID int64) ([]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var ids []int64
  err := transaction.WithContext(ctx).
    Model(&types.VideoFrame{}).
    Where("videoid = ?", videoID).
    Order("id").
    Pluck("id", &ids).Error
  if err != nil {
    return nil, err
  }
  return ids, nil
}

func (r *videoRepo) GetFrameHashes(ctx context.Context, tx *gorm.DB, videoID int64) ([][]byte, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var hashes [][]byte
  rows, err := transaction.WithContext(ctx).
    Model(&types.VideoFrame{}).
    Select("hash").
    Where("videoid = ?", videoID).
    Order("id").
    Rows()
  if err != nil {
    return nil, err
  }
  defer rows.Close()
  for rows.Next() {
    var h []byte
    if err := rows.Scan(&h); err != nil {
      return nil, err
    }
    hashes = append(hashes, h)
  }
  return hashes, rows.Err()
}

func (r *videoRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).Model(&types.Video{}).Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (r *videoRepo) FrameCount(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).Model(&types.VideoFrame{}).Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
