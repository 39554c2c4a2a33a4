package types

type Comment struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID  int64  `gorm:"column:postid;index;not null" json:"post_id"`
	Hexid   string `gorm:"column:hexid;uniqueIndex;not null" json:"hexid"`
	Author  string `gorm:"column:author;index" json:"author"`
	Body    string `gorm:"column:body" json:"body"`
	Ups     int    `gorm:"column:ups" json:"ups"`
	Downs   int    `gorm:"column:downs" json:"downs"`
	Created int64  `gorm:"column:created" json:"created"`
}

func (Comment) TableName() string { return "comments" }
