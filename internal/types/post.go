package types

type Post struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Hexid     string `gorm:"column:hexid;uniqueIndex;not null" json:"hexid"`
	Title     string `gorm:"column:title" json:"title"`
	URL       string `gorm:"column:url" json:"url"`
	Text      string `gorm:"column:text" json:"text"`
	Author    string `gorm:"column:author;index" json:"author"`
	Permalink string `gorm:"column:permalink" json:"permalink"`
	Subreddit string `gorm:"column:subreddit" json:"subreddit"`
	Comments  int    `gorm:"column:comments" json:"comments"`
	Ups       int    `gorm:"column:ups" json:"ups"`
	Downs     int    `gorm:"column:downs" json:"downs"`
	Score     int    `gorm:"column:score" json:"score"`
	Created   int64  `gorm:"column:created" json:"created"`
	IsSelf    bool   `gorm:"column:is_self" json:"is_self"`
	Over18    bool   `gorm:"column:over_18" json:"over_18"`
}

func (Post) TableName() string { return "posts" }
