package types

import (
	"gorm.io/datatypes"
)

type Video struct {
	ID       int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Sha1     string         `gorm:"column:sha1;type:char(40);uniqueIndex;not null" json:"sha1"`
	Width    int            `gorm:"column:width" json:"width"`
	Height   int            `gorm:"column:height" json:"height"`
	Bitrate  int            `gorm:"column:bitrate" json:"bitrate"`
	Codec    string         `gorm:"column:codec" json:"codec"`
	Format   string         `gorm:"column:format" json:"format"`
	Duration int            `gorm:"column:duration" json:"duration"`
	Frames   int            `gorm:"column:frames" json:"frames"`
	Bytes    int            `gorm:"column:bytes" json:"size"`
	Probe    datatypes.JSON `gorm:"column:probe;type:jsonb" json:"-"`
}

func (Video) TableName() string { return "videos" }

type VideoFrame struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Hash    []byte `gorm:"column:hash;type:bytea;not null" json:"-"`
	VideoID int64  `gorm:"column:videoid;index;not null" json:"video_id"`
}

func (VideoFrame) TableName() string { return "videoframes" }
