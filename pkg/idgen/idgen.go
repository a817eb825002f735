// Package idgen produces record identifiers for newly created contacts.
package idgen

import "github.com/google/uuid"

// Generator returns a fresh, collision-resistant identifier on every call.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUIDs in their canonical 36-character
// form. The randomness comes from crypto/rand.
type UUID struct{}

// NewID returns a new random UUID string.
func (UUID) NewID() string {
	return uuid.New().String()
}

// Func adapts an ordinary function to a Generator.
type Func func() string

// NewID calls f.
func (f Func) NewID() string { return f() }
