package domain

import "time"

// User is an authenticated principal. Users are plain records rather than
// event-sourced aggregates; only the bookkeeping aggregates carry logs.
type User struct {
	UserID       string     `json:"userID"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}
