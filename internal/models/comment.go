package models

import "time"

// Comment represents a comment left by a user on a post
type Comment struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Comment        string    `json:"comment" validate:"required"`
	CommentedOn    uint      `json:"commented_on" gorm:"index;not null"`
	Post           *Post     `json:"-" gorm:"foreignKey:CommentedOn;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CommentedBy    uint      `json:"commented_by" gorm:"index;not null"`
	Author         *User     `json:"-" gorm:"foreignKey:CommentedBy;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Timestamp      time.Time `json:"timestamp" gorm:"index;autoCreateTime"`
	LastUpdateTime time.Time `json:"last_update_time" gorm:"index;autoCreateTime"`
	LikesCount     int64     `json:"likes_count" gorm:"default:0"`
}

func (Comment) TableName() string { return "comment" }
