package model

import "time"

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateTaskInput struct {
	Title       string
	Description *string
}

// UpdateTaskInput carries a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskFilters narrows list and count queries. A nil Completed means no
// completion filter; an empty Search means no text filter.
type TaskFilters struct {
	Completed *bool
	Search    string
}

type Page struct {
	Limit  int
	Offset int
}

// Normalize fills in the defaults used when a caller leaves paging unset.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Now returns the current time at the precision the stores keep.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NextUpdatedAt returns a timestamp strictly after previous.
func NextUpdatedAt(previous time.Time) time.Time {
	now := Now()
	if !now.After(previous) {
		return previous.Add(time.Millisecond)
	}
	return now
}
