package store

import (
	"github.com/google/uuid"
)

// TempNamer produces the unique part of temporary file names used for
// atomic writes.
type TempNamer interface {
	Generate() string
}

// UUIDTempNamer generates time-sortable UUIDv7 names.
//
// Thread-safety: UUIDTempNamer is stateless and safe for concurrent use.
type UUIDTempNamer struct{}

// Generate returns a new UUIDv7 string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDTempNamer) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
