package models

// CommentLike represents a like on a comment
type CommentLike struct {
	UserID    uint     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	CommentID uint     `json:"comment_id" gorm:"primaryKey;autoIncrement:false;index"`
	User      *User    `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Comment   *Comment `json:"-" gorm:"foreignKey:CommentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (CommentLike) TableName() string { return "comment_likes" }
