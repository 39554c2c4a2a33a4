package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/types"
)

type CommentRepo interface {
  Insert(ctx context.Context, tx *gorm.DB, comment *types.Comment) (int64, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type commentRepo struct {
  db          *gorm.DB
  log         *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
  repoLog := baseLog.With("repo", "CommentRepo")
  return &commentRepo{db: db, log: repoLog}
}

func (r *commentRepo) Insert(ctx context.Context, tx *gorm.DB, comment *types.Comment) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  row := transaction.WithContext(ctx).Raw(
    `INSERT INTO comments (postid, hexid, author, body, ups, downs, created)
     VALUES (?, ?, ?, ?, ?, ?, ?)
     ON CONFLICT (hexid) DO NOTHING
     RETURNING id`,
    comment.PostID, comment.Hexid, comment.Author, comment.Body,
    comment.Ups, comment.Downs, comment.Created,
  ).Row()
  if err := row.Scan(&id); err != nil {
    conflict, scanErr := insertConflict(err)
    if !conflict {
      return 0, scanErr
    }
    return 0, nil
  }
  return id, nil
}

func (r *commentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).Model(&types.Comment{}).Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
