package models

import "time"

// Post is owned by exactly one User. ViewsCount, RateCount and
// FavouritesCount are denormalized and may drift from the join tables
// until the counters are recomputed.
type Post struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" validate:"max=300"`
	Body            string    `json:"body"`
	Timestamp       time.Time `json:"timestamp" gorm:"index;autoCreateTime"`
	LastUpdateTime  time.Time `json:"last_update_time" gorm:"index;autoCreateTime"`
	UserID          uint      `json:"user_id" gorm:"index;not null"`
	Author          *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Filename        string    `json:"filename"`
	AnonymousShow   bool      `json:"anonymous_show" gorm:"default:false"`
	FileSize        int64     `json:"file_size" gorm:"default:0"`
	ViewsCount      int64     `json:"views_count" gorm:"default:0"`
	RateCount       int64     `json:"rate_count" gorm:"default:0"`
	Show            bool      `json:"show" gorm:"default:false"`
	AllowComments   *bool     `json:"allow_comments" gorm:"default:true"`
	FavouritesCount int64     `json:"favourites_count" gorm:"default:0"`
	Description     string    `json:"description"`
}

func (Post) TableName() string { return "post" }

func (p *Post) String() string { return "<Post " + p.Title + ">" }
