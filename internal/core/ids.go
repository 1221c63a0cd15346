package core

import "github.com/google/uuid"

// newJobID returns a time-ordered UUID v7, falling back to v4 if the
// v7 generator fails.
func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
