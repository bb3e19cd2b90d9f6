// Package componentstore implements a generic component storage engine:
// a container that stores homogeneous values of a user-chosen element type
// T in a dense contiguous array, hands out stable, opaque, reference
// counted handles to those elements, and efficiently recycles slots whose
// last handle has dropped.
//
// The engine is the building block for a component graph system: user data
// structures freely reference components by handle, forming arbitrary
// (possibly cyclic) graphs whose lifetime is managed automatically by the
// handle refcount, without the caller implementing any per-type lifecycle
// logic.
//
// Handle clone and release never touch the backing storage directly; they
// push intents into a small pending journal guarded by a mutex, so handles
// can be cloned or released from any goroutine without exclusive access to
// the Storage value. Storage.SyncPending drains that journal, the one
// linearization point where refcounts and epochs actually change.
//
// componentstore does not serialize to disk, does not share storages
// across processes, and does not break reference cycles automatically:
// use WeakHandle to avoid retaining a cycle, and check Upgrade's error.
//
// © 2025 componentstore authors. MIT License.
package componentstore
