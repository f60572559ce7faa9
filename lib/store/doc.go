// Package store provides the high-level interface for namespaced, versioned item
// storage on top of the lower-level db.KVDB backends. Items are arbitrary JSON
// serializable values, the backend only ever sees JSON text.
//
// The package focuses on:
//   - A unified interface (IStore) for item operations across different backends
//   - A structured error taxonomy shared by all implementations
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations on items
//     (GetItem, SetItem, RemoveItem, HasItem, Keys, Clear). The generic Get
//     helper decodes an item straight into a typed value.
//
//   - Error System: A structured error reporting mechanism using typed return
//     codes. Errors raised by the store itself carry a RetCode and can be matched
//     with errors.Is against ErrInvalidArgument, ErrMalformedData and
//     ErrNotSerializable. The underlying cause stays reachable through
//     errors.As / errors.Unwrap. Errors returned by a backend are passed
//     through untouched.
//
// Implementations:
//
//	The nsstore package ("github.com/ValentinKolb/nsKV/lib/store/nsstore")
//	implements IStore by encoding every key as "<key>::<version>::<namespace>".
//	Items of different namespaces never collide, items of an older version are
//	simply not found anymore, and Clear removes every version of a namespace.
package store
