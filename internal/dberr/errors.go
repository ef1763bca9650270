// Package dberr defines the error kinds surfaced by the datastore.
//
// Every failure is a *Error carrying a Code. Callers match kinds with
// errors.Is against the exported sentinels, or with the Is* helpers:
//
//	if errors.Is(err, dberr.ErrNotAnArray) { ... }
package dberr

import (
	"errors"
	"fmt"
)

// Code categorizes datastore errors.
type Code string

const (
	// CodeEmptyKey indicates an empty key was passed to a keyed operation.
	CodeEmptyKey Code = "EMPTY_KEY"

	// CodeKeyPathNotFound indicates delete walked into a non-object node.
	CodeKeyPathNotFound Code = "KEY_PATH_NOT_FOUND"

	// CodeNotAnArray indicates push targeted a present value that is not an array.
	CodeNotAnArray Code = "NOT_AN_ARRAY"

	// CodeStorageRead indicates the backing document exists but could not be
	// read or parsed.
	CodeStorageRead Code = "STORAGE_READ"

	// CodeStorageWrite indicates the backing document could not be written.
	CodeStorageWrite Code = "STORAGE_WRITE"
)

// Error is the structured error returned by every datastore layer.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Key is the full dot-separated key of the failed operation, if any.
	Key string

	// Path is the backing file or row the storage error refers to, if any.
	Path string

	// Err is the underlying cause (os, sql or json error).
	Err error
}

// Sentinels for errors.Is. They carry only a Code.
var (
	ErrEmptyKey        = &Error{Code: CodeEmptyKey, Message: `"key" is empty`}
	ErrKeyPathNotFound = &Error{Code: CodeKeyPathNotFound, Message: "key path does not exist"}
	ErrNotAnArray      = &Error{Code: CodeNotAnArray, Message: "key does not point to an array"}
	ErrStorageRead     = &Error{Code: CodeStorageRead, Message: "failed to fetch data"}
	ErrStorageWrite    = &Error{Code: CodeStorageWrite, Message: "failed to save data"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key=%q)", e.Key)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// EmptyKey returns an EMPTY_KEY error.
func EmptyKey() *Error {
	return &Error{Code: CodeEmptyKey, Message: ErrEmptyKey.Message}
}

// KeyPathNotFound returns a KEY_PATH_NOT_FOUND error naming key.
func KeyPathNotFound(key string) *Error {
	return &Error{
		Code:    CodeKeyPathNotFound,
		Message: fmt.Sprintf("key path %q does not exist", key),
		Key:     key,
	}
}

// NotAnArray returns a NOT_AN_ARRAY error for key. found names the kind of
// value that was there instead.
func NotAnArray(key, found string) *Error {
	return &Error{
		Code:    CodeNotAnArray,
		Message: fmt.Sprintf("key does not point to an array (found %s)", found),
		Key:     key,
	}
}

// StorageRead wraps cause as a STORAGE_READ error for path.
func StorageRead(path string, cause error) *Error {
	return &Error{Code: CodeStorageRead, Message: ErrStorageRead.Message, Path: path, Err: cause}
}

// StorageWrite wraps cause as a STORAGE_WRITE error for path.
func StorageWrite(path string, cause error) *Error {
	return &Error{Code: CodeStorageWrite, Message: ErrStorageWrite.Message, Path: path, Err: cause}
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsEmptyKey reports whether err is an EMPTY_KEY error.
func IsEmptyKey(err error) bool { return errors.Is(err, ErrEmptyKey) }

// IsKeyPathNotFound reports whether err is a KEY_PATH_NOT_FOUND error.
func IsKeyPathNotFound(err error) bool { return errors.Is(err, ErrKeyPathNotFound) }

// IsNotAnArray reports whether err is a NOT_AN_ARRAY error.
func IsNotAnArray(err error) bool { return errors.Is(err, ErrNotAnArray) }

// IsStorageRead reports whether err is a STORAGE_READ error.
func IsStorageRead(err error) bool { return errors.Is(err, ErrStorageRead) }

// IsStorageWrite reports whether err is a STORAGE_WRITE error.
func IsStorageWrite(err error) bool { return errors.Is(err, ErrStorageWrite) }
