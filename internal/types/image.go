package types

// Hash is the 144-bit dhash, 18 raw bytes. Sha1 is the natural key:
// identical bytes always collapse onto one row.
type Image struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Sha1   string `gorm:"column:sha1;type:char(40);uniqueIndex;not null" json:"sha1"`
	Hash   []byte `gorm:"column:hash;type:bytea;index" json:"-"`
	Width  int    `gorm:"column:width" json:"width"`
	Height int    `gorm:"column:height" json:"height"`
	Bytes  int    `gorm:"column:bytes" json:"size"`
}

func (Image) TableName() string { return "images" }
