package componentstore

// handle.go implements the strong Handle: a reference-counted pointer to
// one incarnation of one slot in a Storage. Clone and Release never touch
// the backing storage; they push intents into the shared journal and
// return, which is what makes them safe to call from any goroutine given
// only the handle itself, with no access to the owning Storage at all.
//
// © 2025 componentstore authors. MIT License.

import (
	internalbits "github.com/Voskan/componentstore/internal/bits"
	"github.com/Voskan/componentstore/internal/journal"
)

// Handle is a reference-counted pointer to a component of type T. The
// component is guaranteed to be accessible, through Storage.At, for as
// long as at least one Handle to it (or a clone of it) has not yet been
// Released and synced away. A Handle alone does not let you reach the
// data: you need the Storage it came from.
type Handle[T any] struct {
	word    internalbits.Word
	journal *journal.Journal
	metrics metricsSink
}

// Clone returns a new Handle to the same component, enqueuing an add-ref
// against the journal. The new handle and the receiver are independent:
// each must eventually be Released.
func (h *Handle[T]) Clone() *Handle[T] {
	h.journal.PushAdd(int(h.word.Index()))
	return &Handle[T]{word: h.word, journal: h.journal, metrics: h.metrics}
}

// Release enqueues a sub-ref against the journal. It plays the role of the
// source's Drop impl: Go has no destructors, so callers must call Release
// explicitly (typically via defer) when they are done with a handle,
// exactly once per Handle value (including ones produced by Clone, Pin,
// or WeakHandle.Upgrade).
func (h *Handle[T]) Release() {
	h.journal.PushSub(int(h.word.Index()))
}

// Downgrade produces a WeakHandle to the same component. Downgrading does
// not affect the refcount.
func (h *Handle[T]) Downgrade() *WeakHandle[T] {
	return &WeakHandle[T]{word: h.word, journal: h.journal, metrics: h.metrics}
}

// Key returns the packed identity of this handle. Two handles with equal
// Key values refer to the same incarnation of the same slot in the same
// storage; Key is suitable as a map key or for use with ==.
func (h *Handle[T]) Key() internalbits.Word { return h.word }

// Equal reports whether h and other refer to the same incarnation of the
// same slot. Equality is over the packed bits only.
func (h *Handle[T]) Equal(other *Handle[T]) bool {
	return h.word == other.word
}

// Less reports whether h sorts before other. Handles from the same
// storage compare by index; handles from different storages are never
// ordered, and Less returns false for both h < other and other < h in
// that case — callers that need to distinguish "incomparable" from
// "equal or greater" should use Comparable.
func (h *Handle[T]) Less(other *Handle[T]) bool {
	if h.word.StorageID() != other.word.StorageID() {
		return false
	}
	return h.word.Index() < other.word.Index()
}

// Comparable reports whether h and other come from the same storage and
// can therefore be meaningfully ordered with Less.
func (h *Handle[T]) Comparable(other *Handle[T]) bool {
	return h.word.StorageID() == other.word.StorageID()
}
