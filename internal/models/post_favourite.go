package models

// PostFavourite records that a user has added a post to favourites.
type PostFavourite struct {
	UserID uint  `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	PostID uint  `json:"post_id" gorm:"primaryKey;autoIncrement:false;index"`
	User   *User `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Post   *Post `json:"-" gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (PostFavourite) TableName() string { return "post_favourites" }
