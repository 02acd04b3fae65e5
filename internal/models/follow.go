package models

// Follower is one edge of the self-referential follow graph over User.
// The pair (FollowerID, FollowedID) is the primary key.
type Follower struct {
	FollowerID uint  `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint  `json:"followed_id" gorm:"primaryKey;autoIncrement:false;index"`
	Follower   *User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Followed   *User `json:"-" gorm:"foreignKey:FollowedID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Follower) TableName() string { return "followers" }
