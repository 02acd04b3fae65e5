package models

// Stuff is a free-standing named record used for site-wide content blocks.
type Stuff struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"uniqueIndex;not null" validate:"required"`
	Content string `json:"content"`
}

func (Stuff) TableName() string { return "stuff" }
