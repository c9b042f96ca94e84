package utils

import (
	"github.com/google/uuid"
)

// NewID returns a time-ordered identifier (UUID v7) so primary keys and
// settlement references sort by creation time. Falls back to a random
// UUID if the v7 source errors.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
