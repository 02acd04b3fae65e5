package models

import "time"

// Notify is a titled notice addressed to a single user.
type Notify struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipient_id" gorm:"index;not null"`
	Recipient   *User     `json:"-" gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Title       string    `json:"title" validate:"required"`
	Body        string    `json:"body"`
	Timestamp   time.Time `json:"timestamp" gorm:"autoCreateTime"`
}

func (Notify) TableName() string { return "notify" }

func (n *Notify) String() string { return "<Notify " + n.Title + ">" }
