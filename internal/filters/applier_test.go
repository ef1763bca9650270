package filters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datastore/internal/datastore"
	"github.com/roach88/datastore/internal/ir"
	"github.com/roach88/datastore/internal/store"
)

func openStore(t *testing.T) *datastore.Store {
	t.Helper()
	s, err := datastore.Open(context.Background(),
		store.Identity{OwnerID: "bot", ShardCount: 1},
		datastore.WithDir(t.TempDir()),
	)
	require.NoError(t, err)
	return s
}

func TestStoreApplier_PersistsPayload(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	f := New("123", NewStoreApplier(s))

	require.NoError(t, f.Preset(ctx, EightD))

	got, err := s.Get(ctx, "filters.123.rotation.rotationHz")
	require.NoError(t, err)
	assert.Equal(t, ir.IRFloat(0.2), got)

	vol, err := s.Get(ctx, "filters.123.volume")
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.IRInt(1), vol))
}

func TestStoreApplier_LoadRestoresState(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	a := NewStoreApplier(s)

	require.NoError(t, New("123", a).Preset(ctx, Nightcore))

	p, ok, err := a.Load(ctx, "123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, &Timescale{Speed: 1.1, Pitch: 1.125, Rate: 1.05}, p.Timescale)

	restored := New("123", a, WithState(p))
	assert.Equal(t, p, restored.Payload())

	_, ok, err = a.Load(ctx, "999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreApplier_CustomPrefix(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	a := &StoreApplier{Store: s, Prefix: "audio.filters"}

	require.NoError(t, a.Apply(ctx, "7", Payload{Equalizer: []Band{}, Volume: 0.5}))

	got, err := s.Get(ctx, "audio.filters.7.volume")
	require.NoError(t, err)
	assert.Equal(t, ir.IRFloat(0.5), got)
}

func TestStoreApplier_EmptyGuild(t *testing.T) {
	a := NewStoreApplier(openStore(t))
	assert.Error(t, a.Apply(context.Background(), "", Payload{}))
}
