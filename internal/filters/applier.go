package filters

import (
	"context"
	"fmt"

	"github.com/roach88/datastore/internal/datastore"
	"github.com/roach88/datastore/internal/keypath"
)

// DefaultKeyPrefix is the store key under which StoreApplier writes payloads.
const DefaultKeyPrefix = "filters"

// StoreApplier persists each payload into a Store at "<Prefix>.<guildID>".
type StoreApplier struct {
	Store  *datastore.Store
	Prefix string
}

// NewStoreApplier creates a StoreApplier with DefaultKeyPrefix.
func NewStoreApplier(s *datastore.Store) *StoreApplier {
	return &StoreApplier{Store: s, Prefix: DefaultKeyPrefix}
}

// Apply implements Applier.
func (a *StoreApplier) Apply(ctx context.Context, guildID string, payload Payload) error {
	if guildID == "" {
		return fmt.Errorf("guild id is required")
	}
	return a.Store.Set(ctx, a.key(guildID), payload)
}

// Load returns the last payload persisted for guildID.
// The bool is false when none was stored.
func (a *StoreApplier) Load(ctx context.Context, guildID string) (Payload, bool, error) {
	return datastore.GetAs[Payload](ctx, a.Store, a.key(guildID))
}

func (a *StoreApplier) key(guildID string) string {
	prefix := a.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return keypath.Join(prefix, guildID)
}
