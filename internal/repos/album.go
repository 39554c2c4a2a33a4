package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/types"
)

type AlbumRepo interface {
  GetOrCreate(ctx context.Context, tx *gorm.DB, url string) (int64, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type albumRepo struct {
  db          *gorm.DB
  log         *logger.Logger
}

func NewAlbumRepo(db *gorm.DB, baseLog *logger.Logger) AlbumRepo {
  repoLog := baseLog.With("repo", "AlbumRepo")
  return &albumRepo{db: db, log: repoLog}
}

func (r *albumRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, url string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  row := transaction.WithContext(ctx).Raw(
    `INSERT INTO albums (url) VALUES (?)
     ON CONFLICT (url) DO NOTHING
     RETURNING id`,
    url,
  ).Row()
  if err := row.Scan(&id); err != nil {
    conflict, scanErr := insertConflict(err)
    if !conflict {
      return 0, scanErr
    }
    lookupErr := transaction.WithContext(ctx).
      Model(&types.Album{}).
      Select("id").
      Where("url = ?", url).
      Take(&id).Error
    if lookupErr != nil {
      return 0, lookupErr
    }
  }
  return id, nil
}

func (r *albumRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).Model(&types.Album{}).Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
