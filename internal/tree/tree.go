// Package tree walks and mutates a document along resolved key segments.
//
// All functions take segments produced by keypath.Resolve and the original
// key, which is only used in error messages. Read is lenient (missing paths
// are "absent"); Write creates structure; Remove never creates structure.
package tree

import (
	"github.com/roach88/datastore/internal/dberr"
	"github.com/roach88/datastore/internal/ir"
)

// Read returns the value at segments, or (nil, false) when any step of the
// walk is missing or is not an object. An IRNull stored at the path is
// returned as present.
func Read(doc ir.IRObject, segments []string) (ir.IRValue, bool) {
	if len(segments) == 0 {
		return nil, false
	}

	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(ir.IRObject)
		if !ok {
			return nil, false
		}
		current = next
	}

	v, ok := current[segments[len(segments)-1]]
	return v, ok
}

// Write stores value at segments. Every intermediate that is missing or is
// not an object is replaced by a fresh empty object, discarding whatever was
// there. Write with no segments does nothing.
func Write(doc ir.IRObject, segments []string, value ir.IRValue) {
	if len(segments) == 0 {
		return
	}
	if value == nil {
		value = ir.IRNull{}
	}

	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(ir.IRObject)
		if !ok || next == nil {
			next = ir.IRObject{}
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// Remove deletes the value at segments and reports whether anything was
// removed. An intermediate that is missing or is not an object fails with
// KEY_PATH_NOT_FOUND; a missing final key returns false without error.
func Remove(doc ir.IRObject, segments []string, key string) (bool, error) {
	if len(segments) == 0 {
		return false, nil
	}

	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(ir.IRObject)
		if !ok || next == nil {
			return false, dberr.KeyPathNotFound(key)
		}
		current = next
	}

	last := segments[len(segments)-1]
	if _, ok := current[last]; !ok {
		return false, nil
	}
	delete(current, last)
	return true, nil
}

// Append adds value to the end of the array at segments, creating the array
// when the path is absent or holds null. Any other existing value fails with
// NOT_AN_ARRAY and leaves doc untouched.
func Append(doc ir.IRObject, segments []string, key string, value ir.IRValue) error {
	if value == nil {
		value = ir.IRNull{}
	}

	existing, _ := Read(doc, segments)

	var arr ir.IRArray
	switch v := existing.(type) {
	case nil, ir.IRNull:
	case ir.IRArray:
		arr = v
	default:
		return dberr.NotAnArray(key, ir.TypeName(existing))
	}

	next := make(ir.IRArray, len(arr), len(arr)+1)
	copy(next, arr)
	next = append(next, value)

	Write(doc, segments, next)
	return nil
}
