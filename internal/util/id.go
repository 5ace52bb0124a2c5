package util

import "github.com/google/uuid"

// NewID returns an opaque unguessable identifier.
func NewID() string {
	return uuid.NewString()
}
