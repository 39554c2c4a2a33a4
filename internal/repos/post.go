package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/types"
)

type PostRepo interface {
  Insert(ctx context.Context, tx *gorm.DB, post *types.Post) (int64, error)
  GetIDByHexid(ctx context.Context, tx *gorm.DB, hexid string) (int64, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type postRepo struct {
  db          *gorm.DB
  log         *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
  repoLog := baseLog.With("repo", "PostRepo")
  return &postRepo{db: db, log: repoLog}
}

// Insert stores the post unless its hexid is already indexed. Returns
// the new row id, or 0 when the post was seen before.
func (r *postRepo) Insert(ctx context.Context, tx *gorm.DB, post *types.Post) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  row := transaction.WithContext(ctx).Raw(
    `INSERT INTO posts
       (hexid, title, url, text, author, permalink, subreddit, comments, ups, downs, score, created, is_self, over_18)
     VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
     ON CONFLICT (hexid) DO NOTHING
     RETURNING id`,
    post.Hexid, post.Title, post.URL, post.Text, post.Author, post.Permalink,
    post.Subreddit, post.Comments, post.Ups, post.Downs, post.Score,
    post.Created, post.IsSelf, post.Over18,
  ).Row()
  if err := row.Scan(&id); err != nil {
    conflict, scanErr := insertConflict(err)
    if !conflict {
      return 0, scanErr
    }
    // The post was seen before.
    return 0, nil
  }
  return id, nil
}

func (r *postRepo) GetIDByHexid(ctx context.Context, tx *gorm.DB, hexid string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  err := transaction.WithContext(ctx).
    Model(&types.Post{}).
    Select("id").
    Where("hexid = ?", hexid).
    Take(&id).Error
  if err == gorm.ErrRecordNotFound {
    return 0, nil
  }
  if err != nil {
    return 0, err
  }
  return id, nil
}

func (r *postRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).Model(&types.Post{}).Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
