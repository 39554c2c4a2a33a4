package repos

import (
  "context"
  "database/sql"
  "gorm.io/gorm"
  "github.com/rarchives/ir/internal/logger"
)

// ImageResultRow is one imageurl binding with its image and whatever
// context it carries. Album, post, and comment are left joins; the
// Valid flags tell the assembler which envelope to build.
type ImageResultRow struct {
  ImageID       int64
  Sha1          string
  Width         int
  Height        int
  Bytes         int
  URL           string
  AlbumURL      sql.NullString
  PostHexid     sql.NullString
  PostTitle     sql.NullString
  PostURL       sql.NullString
  PostText      sql.NullString
  PostAuthor    sql.NullString
  PostPermalink sql.NullString
  PostSubreddit sql.NullString
  PostComments  sql.NullInt64
  PostUps       sql.NullInt64
  PostDowns     sql.NullInt64
  PostCreated   sql.NullInt64
  CommentHexid  sql.NullString
  CommentAuthor sql.NullString
  CommentBody   sql.NullString
  CommentUps    sql.NullInt64
  CommentDowns  sql.NullInt64
  CommentCreated sql.NullInt64
}

type VideoResultRow struct {
  VideoID       int64
  Sha1          string
  Width         int
  Height        int
  Bitrate       int
  Codec         string
  Format        string
  Duration      int
  Frames        int
  Bytes         int
  URL           string
  PostHexid     sql.NullString
  PostTitle     sql.NullString
  PostURL       sql.NullString
  PostText      sql.NullString
  PostAuthor    sql.NullString
  PostPermalink sql.NullString
  PostSubreddit sql.NullString
  PostComments  sql.NullInt64
  PostUps       sql.NullInt64
  PostDowns     sql.NullInt64
  PostCreated   sql.NullInt64
  CommentHexid  sql.NullString
  CommentAuthor sql.NullString
  CommentBody   sql.NullString
  CommentUps    sql.NullInt64
  CommentDowns  sql.NullInt64
  CommentCreated sql.NullInt64
}

type SubredditCount struct {
  Subreddit string `json:"subreddit"`
  Posts     int64  `json:"posts"`
}

type SearchRepo interface {
  SimilarImageIDs(ctx context.Context, tx *gorm.DB, hash []byte, maxDistance int) ([]int64, error)
  SimilarVideoIDs(ctx context.Context, tx *gorm.DB, hashes [][]byte, maxDistance, minFrames int) ([]int64, error)
  ImageResults(ctx context.Context, tx *gorm.DB, imageIDs []int64) ([]ImageResultRow, error)
  VideoResults(ctx context.Context, tx *gorm.DB, videoIDs []int64) ([]VideoResultRow, error)
  ImageIDsByAuthor(ctx context.Context, tx *gorm.DB, author string) ([]int64, error)
  ImageIDsByText(ctx context.Context, tx *gorm.DB, text string) ([]int64, error)
  ImageIDsByAlbumURL(ctx context.Context, tx *gorm.DB, albumURL string) ([]int64, error)
  Subreddits(ctx context.Context, tx *gorm.DB) ([]SubredditCount, error)
  RecentVideoIDs(ctx context.Context, tx *gorm.DB, limit int) ([]int64, error)
}

type searchRepo struct {
  db          *gorm.DB
  log         *logger.Logger
}

func NewSearchRepo(db *gorm.DB, baseLog *logger.Logger) SearchRepo {
  repoLog := baseLog.With("repo", "SearchRepo")
  return &searchRepo{db: db, log: repoLog}
}

// SimilarImageIDs finds every image within maxDistance hamming bits of
// the query hash. Exact matches compare bytea directly and hit the
// hash index; the distance case scans through hash_is_within_distance.
func (r *searchRepo) SimilarImageIDs(ctx context.Context, tx *gorm.DB, hash []byte, maxDistance int) ([]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var ids []int64
  var err error
  if maxDistance == 0 {
    err = transaction.WithContext(ctx).
      Raw(`SELECT id FROM images WHERE hash = ?`, hash).
      Scan(&ids).Error
  } else {
    err = transaction.WithContext(ctx).
      Raw(`SELECT id FROM images WHERE hash_is_within_distance(hash, ?, ?)`, hash, maxDistance).
      Scan(&ids).Error
  }
  if err != nil {
    return nil, err
  }
  return ids, nil
}

// SimilarVideoIDs finds videos where at least minFrames stored frames
// match any of the query hashes within maxDistance. The query hashes
// travel as one concatenated bytea; the plpgsql helpers walk it in
// 18-byte strides.
func (r *searchRepo) SimilarVideoIDs(ctx context.Context, tx *gorm.DB, hashes [][]byte, maxDistance, minFrames int) ([]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(hashes) == 0 {
    return nil, nil
  }
  var packed []byte
  for _, h := range hashes {
    packed = append(packed, h...)
  }

  var ids []int64
  var err error
  if maxDistance == 0 {
    err = transaction.WithContext(ctx).Raw(
      `SELECT videoid FROM videoframes
        WHERE hash_equ_any(hash, ?)
        GROUP BY videoid
        HAVING count(*) >= ?`,
      packed, minFrames,
    ).Scan(&ids).Error
  } else {
    err = transaction.WithContext(ctx).Raw(
      `SELECT videoid FROM videoframes
        WHERE hash_is_within_distance_any(hash, ?, ?)
        GROUP BY videoid
        HAVING count(*) >= ?`,
      packed, maxDistance, minFrames,
    ).Scan(&ids).Error
  }
  if err != nil {
    return nil, err
  }
  return ids, nil
}

const imageResultSelect = `
SELECT images.id, images.sha1, images.width, images.height, images.bytes,
       imageurls.url, albums.url,
       posts.hexid, posts.title, posts.url, posts.text, posts.author,
       posts.permalink, posts.subreddit, posts.comments,
       posts.ups, posts.downs, posts.created,
       comments.hexid, comments.author, comments.body,
       comments.ups, comments.downs, comments.created
  FROM imageurls
  JOIN images   ON images.id   = imageurls.imageid
  LEFT JOIN albums   ON albums.id   = imageurls.albumid
  LEFT JOIN posts    ON posts.id    = imageurls.postid
  LEFT JOIN comments ON comments.id = imageurls.commentid
 WHERE imageurls.imageid IN ?
 ORDER BY posts.ups DESC NULLS LAST`

// ImageResults loads every URL binding for the matched images, with
// post/comment/album context attached. One image can appear many
// times, once per place it was posted.
func (r *searchRepo) ImageResults(ctx context.Context, tx *gorm.DB, imageIDs []int64) ([]ImageResultRow, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(imageIDs) == 0 {
    return nil, nil
  }
  rows, err := transaction.WithContext(ctx).Raw(imageResultSelect, imageIDs).Rows()
  if err != nil {
    return nil, err
  }
  defer rows.Close()

  var result []ImageResultRow
  for rows.Next() {
    var row ImageResultRow
    if err := rows.Scan(
      &row.ImageID, &row.Sha1, &row.Width, &row.Height, &row.Bytes,
      &row.URL, &row.AlbumURL,
      &row.PostHexid, &row.PostTitle, &row.PostURL, &row.PostText, &row.PostAuthor,
      &row.PostPermalink, &row.PostSubreddit, &row.PostComments,
      &row.PostUps, &row.PostDowns, &row.PostCreated,
      &row.CommentHexid, &row.CommentAuthor, &row.CommentBody,
      &row.CommentUps, &row.CommentDowns, &row.CommentCreated,
    ); err != nil {
      return nil, err
    }
    result = append(result, row)
  }
  return result, rows.Err()
}

const videoResultSelect = `
SELECT videos.id, videos.sha1, videos.width, videos.height, videos.bitrate,
       videos.codec, videos.format, videos.duration, videos.frames, videos.bytes,
       videourls.url,
       posts.hexid, posts.title, posts.url, posts.text, posts.author,
       posts.permalink, posts.subreddit, posts.comments,
       posts.ups, posts.downs, posts.created,
       comments.hexid, comments.author, comments.body,
       comments.ups, comments.downs, comments.created
  FROM videourls
  JOIN videos    ON videos.id   = videourls.videoid
  LEFT JOIN posts    ON posts.id    = videourls.postid
  LEFT JOIN comments ON comments.id = videourls.commentid
 WHERE videourls.videoid IN ?
 ORDER BY posts.ups DESC NULLS LAST`

func (r *searchRepo) VideoResults(ctx context.Context, tx *gorm.DB, videoIDs []int64) ([]VideoResultRow, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(videoIDs) == 0 {
    return nil, nil
  }
  rows, err := transaction.WithContext(ctx).Raw(videoResultSelect, videoIDs).Rows()
  if err != nil {
    return nil, err
  }
  defer rows.Close()

  var result []VideoResultRow
  for rows.Next() {
    var row VideoResultRow
    if err := rows.Scan(
      &row.VideoID, &row.Sha1, &row.Width, &row.Height, &row.Bitrate,
      &row.Codec, &row.Format, &row.Duration, &row.Frames, &row.Bytes,
      &row.URL,
      &row.PostHexid, &row.PostTitle, &row.PostURL, &row.PostText, &row.PostAuthor,
      &row.PostPermalink, &row.PostSubreddit, &row.PostComments,
      &row.PostUps, &row.PostDowns, &row.PostCreated,
      &row.CommentHexid, &row.CommentAuthor, &row.CommentBody,
      &row.CommentUps, &row.CommentDowns, &row.CommentCreated,
    ); err != nil {
      return nil, err
    }
    result = append(result, row)
  }
  return result, rows.Err()
}

// ImageIDsByAuthor returns the images bound to the author's 50
// highest-scoring posts.
func (r *searchRepo) ImageIDsByAuthor(ctx context.Context, tx *gorm.DB, author string) ([]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var ids []int64
  err := transaction.WithContext(ctx).Raw(
    `SELECT DISTINCT imageurls.imageid
       FROM imageurls
      WHERE imageurls.postid IN (
              SELECT id FROM posts WHERE author ILIKE ? ORDER BY ups DESC LIMIT 50
            )
         OR imageurls.commentid IN (
              SELECT id FROM comments WHERE author ILIKE ? ORDER BY ups DESC LIMIT 50
            )`,
    author, author,
  ).Scan(&ids).Error
  if err != nil {
    return nil, err
  }
  return ids, nil
}

func (r *searchRepo) ImageIDsByText(ctx context.Context, tx *gorm.DB, text string) ([]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  pattern := "%" + text + "%"
  var ids []int64
  err := transaction.WithContext(ctx).Raw(
    `SELECT DISTINCT imageurls.imageid
       FROM imageurls
      WHERE imageurls.postid IN (
              SELECT id FROM posts
               WHERE title ILIKE ? OR text ILIKE ?
               ORDER BY ups DESC LIMIT 50
            )
         OR imageurls.commentid IN (
              SELECT id FROM comments WHERE body ILIKE ? ORDER BY ups DESC LIMIT 50
            )`,
    pattern, pattern, pattern,
  ).Scan(&ids).Error
  if err != nil {
    return nil, err
  }
  return ids, nil
}

func (r *searchRepo) ImageIDsByAlbumURL(ctx context.Context, tx *gorm.DB, albumURL string) ([]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var ids []int64
  err := transaction.WithContext(ctx).Raw(
    `SELECT DISTINCT imageurls.imageid
       FROM imageurls
       JOIN albums ON albums.id = imageurls.albumid
      WHERE albums.url = ?`,
    albumURL,
  ).Scan(&ids).Error
  if err != nil {
    return nil, err
  }
  return ids, nil
}

func (r *searchRepo) Subreddits(ctx context.Context, tx *gorm.DB) ([]SubredditCount, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  rows, err := transaction.WithContext(ctx).Raw(
    `SELECT subreddit, count(*)
       FROM posts
      WHERE subreddit <> ''
      GROUP BY subreddit
      ORDER BY count(*) DESC`,
  ).Rows()
  if err != nil {
    return nil, err
  }
  defer rows.Close()

  var result []SubredditCount
  for rows.Next() {
    var sc SubredditCount
    if err := rows.Scan(&sc.Subreddit, &sc.Posts); err != nil {
      return nil, err
    }
    result = append(result, sc)
  }
  return result, rows.Err()
}

// RecentVideoIDs lists the most recently indexed videos, for the
// landing-page thumbnail strip.
func (r *searchRepo) RecentVideoIDs(ctx context.Context, tx *gorm.DB, limit int) ([]int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var ids []int64
  err := transaction.WithContext(ctx).Raw(
    `SELECT id FROM videos ORDER BY id DESC LIMIT ?`, limit,
  ).Scan(&ids).Error
  if err != nil {
    return nil, err
  }
  return ids, nil
}
