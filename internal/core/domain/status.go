package domain

import (
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"fmt"
)

// Status is the scheduling phase of an item for a given user.
type Status int

const (
	StatusNew        Status = iota + 1 // Never rated.
	StatusLearning                     // Failed on first exposure, short intervals.
	StatusReview                       // Graduated into the long-term review cycle.
	StatusRelearning                   // Lapsed out of review, short intervals again.
	StatusSuspended                    // Excluded from sittings until reactivated.
)

var (
	statusNames = [...]string{
		StatusNew:        "new",
		StatusLearning:   "learning",
		StatusReview:     "review",
		StatusRelearning: "relearning",
		StatusSuspended:  "suspended",
	}

	statusByName = map[string]Status{
		"new":        StatusNew,
		"learning":   StatusLearning,
		"review":     StatusReview,
		"relearning": StatusRelearning,
		"suspended":  StatusSuspended,
	}
)

var (
	_ fmt.Stringer             = Status(0)
	_ json.Marshaler           = Status(0)
	_ json.Unmarshaler         = (*Status)(nil)
	_ encoding.TextMarshaler   = Status(0)
	_ encoding.TextUnmarshaler = (*Status)(nil)
	_ driver.Valuer            = Status(0)
)

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	return s >= StatusNew && s <= StatusSuspended
}

// String returns the lowercase name of the status ("new" .. "suspended").
// For invalid values it returns "Status(n)".
func (s Status) String() string {
	if s.IsValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, ok := statusByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. Status serializes as a JSON string.
func (s Status) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, data)
	}
	return s.UnmarshalText([]byte(str))
}

// Value implements driver.Valuer so Status persists as its text name.
func (s Status) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return statusNames[s], nil
}

// Scan implements sql.Scanner.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidStatus, src)
	}
}
