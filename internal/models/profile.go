package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the locally owned relationship state of a profile.
// Values are persisted as integers.
type Status int16

const (
	StatusIncoming Status = iota
	StatusMutual
	StatusPassed
)

// AllStatuses lists every status in persisted order.
var AllStatuses = []Status{StatusIncoming, StatusMutual, StatusPassed}

func (s Status) String() string {
	switch s {
	case StatusIncoming:
		return "incoming"
	case StatusMutual:
		return "mutual"
	case StatusPassed:
		return "passed"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s >= StatusIncoming && s <= StatusPassed
}

// ParseStatus accepts a status name ("incoming", "mutual", "passed") or its
// numeric value.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming":
		return StatusIncoming, nil
	case "mutual":
		return StatusMutual, nil
	case "passed":
		return StatusPassed, nil
	}
	if n, err := strconv.Atoi(s); err == nil && Status(n).Valid() {
		return Status(n), nil
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int16(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Profile is a cached remote user together with its local status.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status"`
}

// ProfileData is a profile as returned by the remote source. It carries no
// status: the remote side is authoritative for these fields only.
type ProfileData struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photoURL"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
}

// Page is one page of a paginated fetch. A nil NextCursor means there are no
// more pages.
type Page struct {
	Items      []ProfileData `json:"data"`
	NextCursor *string       `json:"nextCursor"`
}

// Snapshot is a full, ordered result set for one status filter. Seq is the
// store commit sequence the snapshot was read at.
type Snapshot struct {
	Seq      uint64    `json:"seq"`
	Filter   Status    `json:"filter"`
	Profiles []Profile `json:"profiles"`
}

// ProfileFilter selects profiles by status. Results are always ordered by
// CreatedAt descending, then ID. A zero Limit means no limit.
type ProfileFilter struct {
	Status Status
	Limit  int
	Offset int
}
