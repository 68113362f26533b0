package domain

import "time"

// Suggestion is the aggregate users vote on. AuthorName is denormalized from
// the users table on reads and never stored.
type Suggestion struct {
	ID          int64
	Title       string
	Description string
	UserID      int64
	AuthorName  string
	CreatedAt   time.Time
}
