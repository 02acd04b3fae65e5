package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrPayloadDecode is returned when a stored notification payload is not valid JSON.
var ErrPayloadDecode = errors.New("notification payload decode failure")

// Notification carries an opaque JSON payload for a user. The payload is
// stored as text and only decoded on read.
type Notification struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"index"`
	UserID      uint    `json:"user_id" gorm:"index;not null"`
	User        *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Timestamp   float64 `json:"timestamp" gorm:"index"` // unix seconds
	PayloadJSON string  `json:"payload_json" gorm:"column:payload_json;type:text"`
}

func (Notification) TableName() string { return "notification" }

// BeforeCreate stamps the notification with the current time when none was set.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.Timestamp == 0 {
		n.Timestamp = UnixSeconds(time.Now())
	}
	return nil
}

// SetData encodes v as the notification payload.
func (n *Notification) SetData(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}
	n.PayloadJSON = string(b)
	return nil
}

// Data decodes the payload as a JSON object.
func (n *Notification) Data() (datatypes.JSONMap, error) {
	var m datatypes.JSONMap
	if err := n.DecodeData(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeData decodes the payload into v. Any parse problem is reported as
// ErrPayloadDecode so callers never see a raw encoding/json error.
func (n *Notification) DecodeData(v interface{}) error {
	if err := json.Unmarshal([]byte(n.PayloadJSON), v); err != nil {
		return fmt.Errorf("%w: notification %d: %v", ErrPayloadDecode, n.ID, err)
	}
	return nil
}

// RawData returns the payload as JSON after checking that it is well formed.
func (n *Notification) RawData() (datatypes.JSON, error) {
	if !json.Valid([]byte(n.PayloadJSON)) {
		return nil, fmt.Errorf("%w: notification %d: invalid JSON", ErrPayloadDecode, n.ID)
	}
	return datatypes.JSON(n.PayloadJSON), nil
}

// Time converts the stored unix-seconds timestamp.
func (n *Notification) Time() time.Time {
	sec := int64(n.Timestamp)
	nsec := int64((n.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// UnixSeconds renders t the way notification timestamps are stored.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
