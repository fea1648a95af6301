// Package service provides business logic for the application.
package service

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// newID returns a lexicographically sortable unique id.
func newID() string {
	return ulid.Make().String()
}

func utcNow() time.Time {
	return time.Now().UTC()
}
