package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/datastore/internal/ir"
)

// Identity names exactly one persisted document.
type Identity struct {
	OwnerID    string
	ShardCount int
}

// FileName returns the deterministic backing file name for the identity.
// It is computed fresh on every call.
func (id Identity) FileName() string {
	return fmt.Sprintf("database-%d-%s.json", id.ShardCount, id.OwnerID)
}

// String implements fmt.Stringer.
func (id Identity) String() string {
	return fmt.Sprintf("%s/%d", id.OwnerID, id.ShardCount)
}

// Validate rejects identities whose file name would escape the storage
// directory.
func (id Identity) Validate() error {
	if id.OwnerID == "" {
		return fmt.Errorf("owner id is required")
	}
	if strings.ContainsAny(id.OwnerID, `/\`) || strings.Contains(id.OwnerID, "..") {
		return fmt.Errorf("owner id %q must not contain path separators", id.OwnerID)
	}
	if id.ShardCount < 0 {
		return fmt.Errorf("shard count must not be negative, got %d", id.ShardCount)
	}
	return nil
}

// Backend loads and saves whole documents.
type Backend interface {
	// Load returns the persisted document, or an empty one if none exists.
	Load(ctx context.Context, id Identity) (ir.IRObject, error)

	// Save replaces the persisted document.
	Save(ctx context.Context, id Identity, doc ir.IRObject) error
}

// decodeDocument parses a persisted document. A JSON null body is treated as
// an empty document; any other non-object root is an error.
func decodeDocument(data []byte) (ir.IRObject, error) {
	v, err := ir.UnmarshalIRValue(data)
	if err != nil {
		return nil, err
	}
	switch doc := v.(type) {
	case ir.IRNull:
		return ir.IRObject{}, nil
	case ir.IRObject:
		return doc, nil
	default:
		return nil, fmt.Errorf("document root must be an object, got %s", ir.TypeName(v))
	}
}

// encodeDocument serializes doc as canonical JSON. A nil doc encodes as {}.
func encodeDocument(doc ir.IRObject) ([]byte, error) {
	if doc == nil {
		doc = ir.IRObject{}
	}
	return ir.MarshalCanonical(doc)
}
