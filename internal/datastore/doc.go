// Package datastore is the public face of the key-value store.
//
// A Store holds one identity's document in memory and writes the whole
// document through its Backend after every successful mutation:
//
//	s, err := datastore.Open(ctx, store.Identity{OwnerID: "app", ShardCount: 1})
//	if err != nil {
//		return err
//	}
//	if err := s.Set(ctx, "guild.123.prefix", "!"); err != nil {
//		return err
//	}
//	v, err := s.Get(ctx, "guild.123.prefix") // ir.IRString("!")
//
// Keys are dot-separated paths (see package keypath). Reads of missing paths
// return nil rather than an error.
//
// If a save fails after the in-memory mutation was applied, memory is ahead
// of the backend until the next successful save or an explicit Fetch. The
// Store logs a warning when this happens.
//
// One Store serializes its own operations with a mutex. Two Stores for the
// same identity do not see each other's writes until Fetch, and there is no
// locking across processes.
package datastore
