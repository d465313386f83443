package domain

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionComplete = errors.New("session complete")
	ErrEmptyQueue      = errors.New("nothing due for review")
)

// Session is one resumable review sitting: an ordered queue of item IDs and
// a cursor into it. Sessions are ephemeral: a session started on a previous
// calendar day is stale and gets discarded on the next fetch.
type Session struct {
	UserID    string    `json:"user_id"`
	ItemIDs   []string  `json:"item_ids"`
	Cursor    int       `json:"cursor"`
	StartedAt time.Time `json:"started_at"`
}

// CurrentItemID returns the item under the cursor, or ErrSessionComplete
// once the cursor has run past the end of the queue.
func (s *Session) CurrentItemID() (string, error) {
	if s.IsComplete() {
		return "", ErrSessionComplete
	}
	return s.ItemIDs[s.Cursor], nil
}

// IsComplete reports whether every item in the queue has been worked through.
func (s *Session) IsComplete() bool {
	return s.Cursor < 0 || s.Cursor >= len(s.ItemIDs)
}

// Remaining returns how many items are still ahead of the cursor,
// including the current one.
func (s *Session) Remaining() int {
	if s.IsComplete() {
		return 0
	}
	return len(s.ItemIDs) - s.Cursor
}

// StartedOn reports whether the sitting began on the same local calendar
// day as now. Quota counting and session expiry share this boundary.
func (s *Session) StartedOn(now time.Time) bool {
	sy, sm, sd := s.StartedAt.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return sy == ny && sm == nm && sd == nd
}

// Requeue moves the item at the cursor to the back of the queue without
// advancing the cursor, so it resurfaces later in the same sitting.
func (s *Session) Requeue() {
	if s.IsComplete() {
		return
	}
	id := s.ItemIDs[s.Cursor]
	s.ItemIDs = append(s.ItemIDs[:s.Cursor], s.ItemIDs[s.Cursor+1:]...)
	s.ItemIDs = append(s.ItemIDs, id)
}

// Advance moves the cursor forward by one.
func (s *Session) Advance() {
	s.Cursor++
}
