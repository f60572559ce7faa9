package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the interface of a namespaced, versioned item store.
// Values are JSON encoded on write and decoded on read. Write operations return
// only an error (nil on success), read operations return the requested data
// along with an error (nil on success).
type IStore interface {
	// GetItem decodes the value stored for key into value.
	// The boolean return value indicates whether a value for the key was found,
	// value is left untouched if it was not.
	GetItem(key string, value any) (loaded bool, err error)
	// SetItem JSON encodes value and stores it for key, overwriting any previous value.
	SetItem(key string, value any) (err error)
	// RemoveItem removes the value for key. Removing a missing key is not an error.
	RemoveItem(key string) (err error)
	// HasItem returns whether a value is stored for key.
	HasItem(key string) (loaded bool, err error)
	// Keys returns the keys stored under the current namespace and version, sorted.
	Keys() (keys []string, err error)
	// Clear removes every entry of the namespace, regardless of the version it was written with.
	Clear() (err error)
	// Namespace returns the namespace of the store.
	Namespace() string
	// Version returns the version of the store.
	Version() string
}

// Get reads the value for key from s and decodes it into a T.
// The boolean return value indicates whether a value for the key was found.
func Get[T any](s IStore, key string) (T, bool, error) {
	var value T
	loaded, err := s.GetItem(key, &value)
	return value, loaded, err
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the error that caused it.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The cause, may be nil.
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause of the error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same return code.
// This makes the sentinel errors below usable with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new store error with the given code and message caused by err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// Sentinel errors for errors.Is, they match any *Error with the same code.
var (
	ErrInvalidArgument = NewError(RetCInvalidArgument, "invalid argument")
	ErrMalformedData   = NewError(RetCMalformedData, "malformed data")
	ErrNotSerializable = NewError(RetCNotSerializable, "value not serializable")
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess         RetCode = iota // 0: Command executed successfully.
	RetCInvalidArgument                // 1: An argument was rejected (bad namespace, version or decode target).
	RetCMalformedData                  // 2: A stored value cannot be decoded into the target.
	RetCNotSerializable                // 3: A value could not be JSON encoded.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInvalidArgument:
		return "InvalidArgument"
	case RetCMalformedData:
		return "MalformedData"
	case RetCNotSerializable:
		return "NotSerializable"
	default:
		return "Unknown"
	}
}
