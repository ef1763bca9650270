// Package ir provides the in-memory document tree used by the datastore.
//
// A document is an IRObject at the root. Every node is one of the sealed
// IRValue variants: IRNull, IRBool, IRInt, IRFloat, IRString, IRArray or
// IRObject. The package has no internal imports so every other package can
// depend on it.
//
// Key design constraints:
//   - JSON null decodes to IRNull{}, never to a nil IRValue
//   - integers that fit in int64 stay IRInt; every other number is IRFloat
//   - MarshalCanonical is the only encoding written to disk, so identical
//     documents always produce identical files
package ir
