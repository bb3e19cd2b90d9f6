package componentstore

// weak.go implements WeakHandle: a handle that does not participate in
// reference counting. Cloning or discarding a WeakHandle is free (no
// journal traffic at all; there is no Release to call); upgrading one to a strong Handle checks the
// slot's live epoch against the epoch stored in the weak handle and fails
// with ErrDeadComponent if the slot has since been recycled for a
// different incarnation.
//
// © 2025 componentstore authors. MIT License.

import (
	internalbits "github.com/Voskan/componentstore/internal/bits"
	"github.com/Voskan/componentstore/internal/journal"
)

// WeakHandle is the non-retaining counterpart to Handle. Hold a WeakHandle
// instead of a Handle to break a reference cycle: the cycle's components
// can then be recycled once every strong handle into the cycle is
// released, rather than leaking forever.
type WeakHandle[T any] struct {
	word    internalbits.Word
	journal *journal.Journal
	metrics metricsSink
}

// Clone returns a new WeakHandle to the same slot. Unlike Handle.Clone,
// this never touches the journal.
func (w *WeakHandle[T]) Clone() *WeakHandle[T] {
	return &WeakHandle[T]{word: w.word, journal: w.journal, metrics: w.metrics}
}

// Upgrade attempts to produce a strong Handle to the component. It fails
// with ErrDeadComponent if the slot's live epoch no longer matches the
// epoch recorded in w, meaning the slot has been recycled for a different
// incarnation since w was created (or since the Handle it was downgraded
// from was created). On success, an add-ref for the slot is enqueued in
// the same journal-lock critical section that read the epoch, so there is
// no window where the epoch check passes but the slot recycles before the
// add-ref lands.
func (w *WeakHandle[T]) Upgrade() (*Handle[T], error) {
	if !w.journal.TryUpgrade(int(w.word.Index()), w.word.Epoch()) {
		if w.metrics != nil {
			w.metrics.incDeadUpgrade(w.word.StorageID())
		}
		return nil, ErrDeadComponent
	}
	return &Handle[T]{word: w.word, journal: w.journal, metrics: w.metrics}, nil
}

// Key returns the packed identity of this weak handle.
func (w *WeakHandle[T]) Key() internalbits.Word { return w.word }

// Equal reports whether w and other refer to the same incarnation of the
// same slot.
func (w *WeakHandle[T]) Equal(other *WeakHandle[T]) bool {
	return w.word == other.word
}
