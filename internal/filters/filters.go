package filters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sync"
)

// Applier sends a complete filter payload for a guild to whatever plays the
// audio.
type Applier interface {
	Apply(ctx context.Context, guildID string, payload Payload) error
}

// Filters is the filter state for one guild.
//
// Every mutating method builds the next state and calls the Applier once
// with the full payload. The local state and preset status change only when
// Apply succeeds; on failure both stay as they were and the error is returned.
//
// Thread-safety: all methods are safe for concurrent use.
type Filters struct {
	mu      sync.Mutex
	guildID string
	applier Applier
	logger  *slog.Logger

	state  Payload
	status map[Name]bool
}

// Option configures Filters.
type Option func(*Filters)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(f *Filters) { f.logger = l }
}

// WithState starts from a previously applied payload (see StoreApplier.Load).
func WithState(p Payload) Option {
	return func(f *Filters) { f.state = p.clone() }
}

// New creates cleared filters for guildID.
func New(guildID string, applier Applier, opts ...Option) *Filters {
	f := &Filters{
		guildID: guildID,
		applier: applier,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:   Payload{Equalizer: []Band{}, Volume: DefaultVolume},
		status:  make(map[Name]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("guild", guildID)
	return f
}

// Payload returns a copy of the current state.
func (f *Filters) Payload() Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// Status reports whether preset name is active.
func (f *Filters) Status(name Name) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[name]
}

// Active returns the active presets in sorted order.
func (f *Filters) Active() []Name {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Name
	for _, n := range Names() {
		if f.status[n] {
			out = append(out, n)
		}
	}
	return out
}

// Preset applies the named preset and marks it active.
func (f *Filters) Preset(ctx context.Context, name Name) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown filter %q", name)
	}
	return f.update(ctx, func(state *Payload, status map[Name]bool) {
		p(state)
		status[name] = true
	})
}

// SetEqualizer replaces the equalizer bands. Nil clears them.
func (f *Filters) SetEqualizer(ctx context.Context, b []Band) error {
	return f.update(ctx, func(state *Payload, _ map[Name]bool) { state.Equalizer = bands(b) })
}

// SetTimescale replaces the timescale. Nil turns it off.
func (f *Filters) SetTimescale(ctx context.Context, ts *Timescale) error {
	return f.update(ctx, func(state *Payload, _ map[Name]bool) { state.Timescale = ts })
}

// SetVibrato replaces the vibrato. Nil turns it off.
func (f *Filters) SetVibrato(ctx context.Context, v *Vibrato) error {
	return f.update(ctx, func(state *Payload, _ map[Name]bool) { state.Vibrato = v })
}

// SetRotation replaces the rotation. Nil turns it off.
func (f *Filters) SetRotation(ctx context.Context, r *Rotation) error {
	return f.update(ctx, func(state *Payload, _ map[Name]bool) { state.Rotation = r })
}

// SetDistortion replaces the distortion. Nil turns it off.
func (f *Filters) SetDistortion(ctx context.Context, d *Distortion) error {
	return f.update(ctx, func(state *Payload, _ map[Name]bool) { state.Distortion = d })
}

// SetKaraoke replaces the karaoke settings and marks karaoke active when k
// is non-nil.
func (f *Filters) SetKaraoke(ctx context.Context, k *Karaoke) error {
	return f.update(ctx, func(state *Payload, status map[Name]bool) {
		state.Karaoke = k
		status[KaraokeFX] = k != nil
	})
}

// SetVolume sets the volume multiplier.
func (f *Filters) SetVolume(ctx context.Context, v float64) error {
	if v < 0 {
		return fmt.Errorf("volume must not be negative, got %v", v)
	}
	return f.update(ctx, func(state *Payload, _ map[Name]bool) { state.Volume = v })
}

// Clear turns every filter off, resets the volume and deactivates all
// presets.
func (f *Filters) Clear(ctx context.Context) error {
	return f.update(ctx, func(state *Payload, status map[Name]bool) {
		*state = Payload{Equalizer: []Band{}, Volume: DefaultVolume}
		clear(status)
	})
}

// update runs mutate on copies of the state and status under the lock,
// applies the result and commits it only if Apply succeeds.
func (f *Filters) update(ctx context.Context, mutate func(*Payload, map[Name]bool)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.state.clone()
	status := maps.Clone(f.status)
	mutate(&next, status)
	if next.Equalizer == nil {
		next.Equalizer = []Band{}
	}

	if err := f.applier.Apply(ctx, f.guildID, next.clone()); err != nil {
		f.logger.Error("apply filters failed", "error", err)
		return fmt.Errorf("apply filters for guild %s: %w", f.guildID, err)
	}
	f.state = next
	f.status = status
	f.logger.Debug("filters applied", "active", len(status))
	return nil
}
