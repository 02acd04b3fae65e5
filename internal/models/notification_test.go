package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestNotification_PayloadRoundTrip(t *testing.T) {
	n := &Notification{Name: "unread_message_count"}
	require.NoError(t, n.SetData(map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, n.PayloadJSON)

	data, err := n.Data()
	require.NoError(t, err)
	assert.Equal(t, datatypes.JSONMap{"a": float64(1)}, data)

	var typed struct {
		A int `json:"a"`
	}
	require.NoError(t, n.DecodeData(&typed))
	assert.Equal(t, 1, typed.A)
}

func TestNotification_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"truncated object", `{"a":`},
		{"python repr", `{'a': 1}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notification{ID: 7, PayloadJSON: tt.payload}

			_, err := n.Data()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPayloadDecode))

			_, err = n.RawData()
			assert.True(t, errors.Is(err, ErrPayloadDecode))
		})
	}
}

func TestNotification_RawDataKeepsNonObjectPayloads(t *testing.T) {
	n := &Notification{PayloadJSON: `[1,2,3]`}

	raw, err := n.RawData()
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(raw))

	_, err = n.Data()
	assert.True(t, errors.Is(err, ErrPayloadDecode), "an array is not an object")
}

func TestNotification_Time(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 500_000_000, time.UTC)
	n := &Notification{Timestamp: UnixSeconds(at)}
	assert.WithinDuration(t, at, n.Time(), time.Millisecond)
}
