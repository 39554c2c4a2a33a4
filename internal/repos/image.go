package repos

import (
  "context"
  "database/sql"
  "errors"
  "gorm.io/gorm"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/types"
)

type ImageRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, image *types.Image) (int64, bool, error)
  GetIDBySha1(ctx context.Context, tx *gorm.DB, sha1 string) (int64, error)
  GetIDByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) (int64, error)
  GetHashByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) ([]byte, error)
  Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type imageRepo struct {
  db          *gorm.DB
  log         *logger.Logger
}

func NewImageRepo(db *gorm.DB, baseLog *logger.Logger) ImageRepo {
  repoLog := baseLog.With("repo", "ImageRepo")
  return &imageRepo{db: db, log: repoLog}
}

// Upsert inserts the image or, if another writer got there first,
// resolves the existing row by sha1. The bool reports whether a new
// row was created. Safe to call concurrently from multiple workers.
func (r *imageRepo) Upsert(ctx context.Context, tx *gorm.DB, image *types.Image) (int64, bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  row := transaction.WithContext(ctx).Raw(
    `INSERT INTO images (sha1, hash, width, height, bytes)
     VALUES (?, ?, ?, ?, ?)
     ON CONFLICT (sha1) DO NOTHING
     RETURNING id`,
    image.Sha1, image.Hash, image.Width, image.Height, image.Bytes,
  ).Row()
  if err := row.Scan(&id); err != nil {
    conflict, scanErr := insertConflict(err)
    if !conflict {
      return 0, false, scanErr
    }
    existing, lookupErr := r.GetIDBySha1(ctx, transaction, image.Sha1)
    if lookupErr != nil {
      return 0, false, lookupErr
    }
    return existing, false, nil
  }
  return id, true, nil
}

func (r *imageRepo) GetIDBySha1(ctx context.Context, tx *gorm.DB, sha1 string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  err := transaction.WithContext(ctx).
    Model(&types.Image{}).
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

func (r *imageRepo) GetIDByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var id int64
  err := transaction.WithContext(ctx).
    Model(&types.ImageURL{}).
    Select("imageid").
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

// GetHashByCleanURL returns the stored dhash for a previously indexed
// URL, or nil when the URL is unknown. Lets query-time searches skip
// the download.
func (r *imageRepo) GetHashByCleanURL(ctx context.Context, tx *gorm.DB, cleanURL string) ([]byte, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var hash []byte
  row := transaction.WithContext(ctx).Raw(
    `SELECT images.hash
       FROM images
       JOIN imageurls ON imageurls.imageid = images.id
      WHERE imageurls.clean_url = ?
      LIMIT 1`,
    cleanURL,
  ).Row()
  if err := row.Scan(&hash); err != nil {
    if errors.Is(err, sql.ErrNoRows) {
      return nil, nil
    }
    return nil, err
  }
  return hash, nil
}

func (r *imageRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).Model(&types.Image{}).Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
