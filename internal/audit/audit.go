// Package audit keeps a journal of the changes made through the admin back-office.
package audit

import (
	"context"
	"sync"
	"time"
)

// Actions recorded by the admin service.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionRecount = "recount"
)

// Entry is one journal record.
type Entry struct {
	ActorID    uint                   `bson:"actor_id" json:"actor_id"`
	ActorEmail string                 `bson:"actor_email,omitempty" json:"actor_email,omitempty"`
	Action     string                 `bson:"action" json:"action"`
	View       string                 `bson:"view" json:"view"`
	Key        string                 `bson:"key,omitempty" json:"key,omitempty"`
	At         time.Time              `bson:"at" json:"at"`
	Detail     map[string]interface{} `bson:"detail,omitempty" json:"detail,omitempty"`
}

// Recorder stores journal entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards every entry. It is used when no journal store is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

// Memory keeps entries in memory, newest last. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

// Entries returns a copy of every recorded entry, oldest first.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Recent returns the latest entries of a view, newest first.
func (m *Memory) Recent(_ context.Context, view string, limit int64) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for i := len(m.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if view == "" || m.entries[i].View == view {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}
