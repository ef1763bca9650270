// Package filters builds audio-filter payloads from named presets.
//
// A Filters value tracks the current filter state for one guild and which
// presets are active. Every change sends the complete state to an Applier as
// a single Payload; the audio node that consumes it is outside this module.
// StoreApplier is the local Applier, persisting payloads into a
// datastore.Store under "filters.<guildID>".
package filters
