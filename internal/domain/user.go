package domain

import "time"

// User is the domain model for registered accounts. Accounts are immutable
// after registration; there are no update or delete operations.
type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}
