package testutil

// FixedTempNamer returns the same temp-file suffix every time.
//
// This makes the temp file written during an atomic save predictable, so
// tests can assert it was cleaned up.
//
// Thread-safety: FixedTempNamer is stateless and safe for concurrent use.
type FixedTempNamer struct {
	name string
}

// NewFixedTempNamer creates a fixed temp name generator.
// If name is empty, Generate() returns "test-tmp".
func NewFixedTempNamer(name string) *FixedTempNamer {
	if name == "" {
		name = "test-tmp"
	}
	return &FixedTempNamer{name: name}
}

// Generate returns the fixed name.
//
// Implements store.TempNamer.
func (n *FixedTempNamer) Generate() string {
	return n.name
}
