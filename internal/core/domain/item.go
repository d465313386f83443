package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrItemInvalidUserID = errors.New("invalid user id")
	ErrItemFrontEmpty    = errors.New("item front cannot be empty")
	ErrItemFrontTooLong  = errors.New("item front is too long (max 2000 chars)")
	ErrItemBackTooLong   = errors.New("item back is too long (max 8000 chars)")
)

const (
	MaxFrontLen = 2000
	MaxBackLen  = 8000
)

// Item is one captured flashcard. The scheduler itself only ever touches
// the ID; the content fields exist for the host surfaces that render cards.
type Item struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Front     string    `json:"front" db:"front"`
	Back      string    `json:"back" db:"back"`
	SourceURL string    `json:"source_url,omitempty" db:"source_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewItem(userID, front, back, sourceURL string) (*Item, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrItemInvalidUserID
	}

	front = strings.TrimSpace(front)
	if front == "" {
		return nil, ErrItemFrontEmpty
	}
	if len(front) > MaxFrontLen {
		return nil, ErrItemFrontTooLong
	}

	back = strings.TrimSpace(back)
	if len(back) > MaxBackLen {
		return nil, ErrItemBackTooLong
	}

	return &Item{
		ID:        uuid.New().String(),
		UserID:    userID,
		Front:     front,
		Back:      back,
		SourceURL: strings.TrimSpace(sourceURL),
		CreatedAt: time.Now().UTC(),
	}, nil
}
