package componentstore

// cursor.go implements the streaming cursor: the construct that lets code
// walk slot i while simultaneously borrowing slot j in the same Storage,
// without violating aliasing. Each step splits the backing array into
// three disjoint pieces — left | current | right — any two of which can
// be held and mutated at once because Go slice expressions over the same
// backing array never overlap.
//
// © 2025 componentstore authors. MIT License.

import (
	internalbits "github.com/Voskan/componentstore/internal/bits"
	"github.com/Voskan/componentstore/internal/debugcheck"
)

// Slice is a bounded view of the backing array carrying a base offset, so
// that a Handle's absolute index can be rehomed into the view's local
// coordinates.
type Slice[T any] struct {
	data      []T
	base      int
	storageID uint8
}

// Get returns the element h refers to, if it falls within the slice,
// rewriting h's absolute index by the slice's base offset. It reports
// false (not an error) when h falls outside the slice's range. The
// returned pointer is writable, playing the role of both the source's
// Slice::get and Slice::get_mut.
func (sl Slice[T]) Get(h *Handle[T]) (*T, bool) {
	debugcheck.Assert(h.word.StorageID() == sl.storageID, "handle belongs to a different storage")
	idx := int(h.word.Index()) - sl.base
	if idx < 0 || idx >= len(sl.data) {
		return nil, false
	}
	return &sl.data[idx], true
}

// GetMut is an alias for Get kept for parity with the source's separate
// immutable/mutable accessors; in Go a single pointer-returning method
// already covers both uses.
func (sl Slice[T]) GetMut(h *Handle[T]) (*T, bool) { return sl.Get(h) }

// Len reports the number of elements visible through the slice.
func (sl Slice[T]) Len() int { return len(sl.data) }

// CursorItem is the "current" piece of a cursor step: the element the
// cursor is positioned at, plus enough context to pin it or to look at a
// specific neighbor without materializing a full Split.
type CursorItem[T any] struct {
	storage *Storage[T]
	index   int
}

// Value returns a pointer to the item's current value.
func (ci CursorItem[T]) Value() *T { return &ci.storage.inner.data[ci.index] }

// Index returns the slot index the cursor is positioned at.
func (ci CursorItem[T]) Index() int { return ci.index }

// Pin produces a strong Handle to the item, under one journal lock: an
// add-ref is pushed and the slot's current epoch is read atomically with
// it, so a subsequent weak upgrade through the same slot identifies the
// correct incarnation.
func (ci CursorItem[T]) Pin() *Handle[T] {
	epoch := ci.storage.journal.PushAddAndReadEpoch(ci.index)
	word := internalbits.New(uint64(ci.index), epoch, ci.storage.id)
	return &Handle[T]{word: word, journal: ci.storage.journal, metrics: ci.storage.metrics}
}

// LookBack returns the element h refers to if it lies strictly before the
// cursor's current position, or false otherwise — not finding an element
// there is a normal outcome, not an error.
func (ci CursorItem[T]) LookBack(h *Handle[T]) (*T, bool) {
	ci.storage.checkf(h.word.StorageID() == ci.storage.id, "handle belongs to a different storage (got %d, want %d)", h.word.StorageID(), ci.storage.id)
	idx := int(h.word.Index())
	if idx < ci.index {
		return &ci.storage.inner.data[idx], true
	}
	return nil, false
}

// LookAhead returns the element h refers to if it lies strictly after the
// cursor's current position, or false otherwise.
func (ci CursorItem[T]) LookAhead(h *Handle[T]) (*T, bool) {
	ci.storage.checkf(h.word.StorageID() == ci.storage.id, "handle belongs to a different storage (got %d, want %d)", h.word.StorageID(), ci.storage.id)
	idx := int(h.word.Index())
	if idx > ci.index {
		return &ci.storage.inner.data[idx], true
	}
	return nil, false
}

// Cursor is a streaming iterator positioned at an integer k in
// [0, storage.Len()]. Next advances forward until it finds a live slot or
// reaches the end; Prev advances backward until it finds a live slot or
// reaches the start. The filtering rule (skip meta == 0) is identical to
// Iter's, so cursor semantics match iterator semantics on liveness.
type Cursor[T any] struct {
	storage *Storage[T]
	index   int
}

// Next advances to the next live slot, returning its (left, current,
// right) triple, or false at the end of the array.
func (c *Cursor[T]) Next() (Slice[T], CursorItem[T], Slice[T], bool) {
	for {
		id := c.index
		if id >= len(c.storage.inner.data) {
			return Slice[T]{}, CursorItem[T]{}, Slice[T]{}, false
		}
		c.index++
		if c.storage.inner.meta[id] != 0 {
			left, _, right := c.storage.inner.split(uint64(id), c.storage.id)
			return left, CursorItem[T]{storage: c.storage, index: id}, right, true
		}
	}
}

// Prev advances to the previous live slot, symmetric to Next.
func (c *Cursor[T]) Prev() (Slice[T], CursorItem[T], Slice[T], bool) {
	for {
		if c.index <= 0 {
			return Slice[T]{}, CursorItem[T]{}, Slice[T]{}, false
		}
		c.index--
		id := c.index
		if c.storage.inner.meta[id] != 0 {
			left, _, right := c.storage.inner.split(uint64(id), c.storage.id)
			return left, CursorItem[T]{storage: c.storage, index: id}, right, true
		}
	}
}
