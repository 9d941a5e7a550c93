// Package runid stamps one pipeline invocation with a unique
// correlation id, so two concurrent runs' interleaved logs can be
// told apart.
package runid

import "github.com/google/uuid"

// New returns a fresh run correlation id.
func New() string {
	return uuid.New().String()
}
