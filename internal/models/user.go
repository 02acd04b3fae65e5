package models

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is the root entity; posts, comments, messages, notifications and
// every join-table row reference it and are removed with it.
type User struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	Username            string    `json:"username" gorm:"uniqueIndex;not null" validate:"required,min=1,max=64"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Email               string    `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	Password            string    `json:"password,omitempty"` // bcrypt hash, never serialized back
	AvatarURL           string    `json:"avatar_url" gorm:"default:static/default.png"`
	StorageUsed         int64     `json:"stroage_used" gorm:"column:stroage_used;default:0"`
	StorageGranted      int64     `json:"stroage_granted" gorm:"column:stroage_granted"`
	SubID               int16     `json:"sub_id" gorm:"type:smallint;default:0"`
	AboutMe             string    `json:"about_me"`
	MessageSetting      int16     `json:"message_setting" gorm:"type:smallint;default:0"`
	Role                Role      `json:"role" gorm:"type:smallint;default:0"`
	Confirmed           bool      `json:"confirmed" gorm:"default:false"`
	Banned              bool      `json:"banned" gorm:"default:false"`
	BannedReason        string    `json:"banned_reason" gorm:"default:''"`
	Blogger             bool      `json:"blogger" gorm:"default:false"`
	MemberSince         time.Time `json:"member_since" gorm:"autoCreateTime"`
	LastSeen            time.Time `json:"last_seen" gorm:"autoCreateTime"`
	EmailNotify         *bool     `json:"email_notify" gorm:"default:true"`
	ShowProfileID       int16     `json:"show_profile_id" gorm:"type:smallint;default:0"`
	AnonymousShow       *bool     `json:"anonymous_show" gorm:"default:true"`
	LastMessageReadTime time.Time `json:"last_message_read_time" gorm:"autoCreateTime"`
	LastNotifyReadTime  time.Time `json:"last_notify_read_time" gorm:"autoCreateTime"`
}

func (User) TableName() string { return "user" }

// MarshalJSON leaves the password hash out of every rendering of a user.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	out := plain(u)
	out.Password = ""
	return json.Marshal(out)
}

// BeforeSave stores plaintext passwords as bcrypt hashes, both for struct
// saves and for column-map updates. Values that already look like a bcrypt
// hash are kept as they are.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if updates, ok := tx.Statement.Dest.(map[string]interface{}); ok {
		plain, ok := updates["password"].(string)
		if !ok {
			return nil
		}
		hash, err := hashPassword(plain)
		if err != nil {
			return err
		}
		updates["password"] = hash
		return nil
	}
	hash, err := hashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

// CheckPassword compares a plaintext candidate with the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func (u *User) String() string { return "<User " + u.Username + ">" }

func hashPassword(plain string) (string, error) {
	if plain == "" || isBcryptHash(plain) {
		return plain, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
