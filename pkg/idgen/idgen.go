// Package idgen mints the 128-bit stable identifiers attached to every
// placed instance, wire, label, footprint, track, and via. Spec.md §5
// treats collisions as impossible given a cryptographically-random
// source; google/uuid's default generator satisfies that directly.
package idgen

import "github.com/google/uuid"

// New mints a fresh random (v4) identifier string, formatted the way
// every UUID field in these documents is written: lowercase, hyphenated.
func New() string {
	return uuid.New().String()
}
