package types

type Album struct {
	ID  int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	URL string `gorm:"column:url;uniqueIndex;not null" json:"url"`
}

func (Album) TableName() string { return "albums" }
