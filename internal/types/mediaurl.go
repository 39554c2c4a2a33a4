package types

// ImageURL binds a display URL to an image and, when ingested from the
// bus, to the post or comment it appeared in. Bindings created by the
// query service carry neither.
type ImageURL struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	URL       string `gorm:"column:url" json:"url"`
	CleanURL  string `gorm:"column:clean_url;index" json:"clean_url"`
	ImageID   int64  `gorm:"column:imageid;index;not null" json:"image_id"`
	AlbumID   *int64 `gorm:"column:albumid;index" json:"album_id,omitempty"`
	PostID    *int64 `gorm:"column:postid;index" json:"post_id,omitempty"`
	CommentID *int64 `gorm:"column:commentid;index" json:"comment_id,omitempty"`
}

func (ImageURL) TableName() string { return "imageurls" }

type VideoURL struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	URL       string `gorm:"column:url" json:"url"`
	CleanURL  string `gorm:"column:clean_url;index" json:"clean_url"`
	VideoID   int64  `gorm:"column:videoid;index;not null" json:"video_id"`
	PostID    *int64 `gorm:"column:postid;index" json:"post_id,omitempty"`
	CommentID *int64 `gorm:"column:commentid;index" json:"comment_id,omitempty"`
}

func (VideoURL) TableName() string { return "videourls" }
