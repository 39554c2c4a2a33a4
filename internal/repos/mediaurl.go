package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/types"
)

type MediaURLRepo interface {
  BindImage(ctx context.Context, tx *gorm.DB, bind *types.ImageURL) error
  BindVideo(ctx context.Context, tx *gorm.DB, bind *types.VideoURL) error
}

type mediaURLRepo struct {
  db          *gorm.DB
  log         *logger.Logger
}

func NewMediaURLRepo(db *gorm.DB, baseLog *logger.Logger) MediaURLRepo {
  repoLog := baseLog.With("repo", "MediaURLRepo")
  return &mediaURLRepo{db: db, log: repoLog}
}

// BindImage records that a URL (in a given post/comment/album context)
// resolves to an image. Bindings are additive and best-effort: a
// failure to bind never fails the ingest of the image itself.
func (r *mediaURLRepo) BindImage(ctx context.Context, tx *gorm.DB, bind *types.ImageURL) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if err := transaction.WithContext(ctx).Create(bind).Error; err != nil {
    r.log.Warn("Image url bind failed", "url", bind.URL, "error", err)
    return err
  }
  return nil
}

func (r *mediaURLRepo) BindVideo(ctx context.Context, tx *gorm.DB, bind *types.VideoURL) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if err := transaction.WithContext(ctx).Create(bind).Error; err != nil {
    r.log.Warn("Video url bind failed", "url", bind.URL, "error", err)
    return err
  }
  return nil
}
