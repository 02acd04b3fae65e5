package models

// PostView records that a user has viewed a post.
type PostView struct {
	UserID uint  `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	PostID uint  `json:"post_id" gorm:"primaryKey;autoIncrement:false;index"`
	User   *User `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Post   *Post `json:"-" gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (PostView) TableName() string { return "post_views" }
