package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// NewID generates a 16-character collision-resistant identifier for
// aggregates and events. Ids are opaque, globally unique and never reused.
func NewID() string {
	return gonanoid.Must(16)
}

// NewUserID generates a 10-character identifier for users.
func NewUserID() string {
	return gonanoid.Must(10)
}
