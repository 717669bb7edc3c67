package domain

import "time"

// User is the domain model for account holders who own tickets. Rows are
// created on registration and never mutated or deleted afterwards.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
