package models

import "time"

// Message is a private message between two users. Removing either the
// sender or the recipient removes the message.
type Message struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	SenderID       uint       `json:"sender_id" gorm:"index;not null"`
	Sender         *User      `json:"-" gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	RecipientID    uint       `json:"recipient_id" gorm:"index;not null"`
	Recipient      *User      `json:"-" gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Title          string     `json:"title" validate:"required"`
	Read           bool       `json:"read" gorm:"default:false"`
	ReadTime       *time.Time `json:"read_time"`
	Body           string     `json:"body"`
	Filename       string     `json:"filename"`
	FileSize       int64      `json:"file_size" gorm:"default:0"`
	Timestamp      time.Time  `json:"timestamp" gorm:"index;autoCreateTime"`
	LastUpdateTime time.Time  `json:"last_update_time" gorm:"index;autoCreateTime"`
}

func (Message) TableName() string { return "message" }

func (m *Message) String() string { return "<Message " + m.Title + ">" }
