// Package bits packs the (storage_id, epoch, index) triple that identifies
// one incarnation of one slot into a single machine word.
//
// This is the one place in the module that reasons about raw bit widths, in
// the spirit of the teacher's internal/unsafehelpers package, which
// centralises every unavoidable low-level trick behind a small, documented
// surface so the rest of the tree stays boring. Here the only "unsafe"
// operation left is an unsafe.Sizeof assertion, run once at package init,
// proving the three lanes exactly fill the packed word; everything else is
// plain bit arithmetic.
//
// © 2025 componentstore authors. MIT License.
package bits

import (
	"unsafe"

	"github.com/Voskan/componentstore/internal/debugcheck"
)

const (
	// IndexBits, EpochBits and StorageIDBits follow the spec's 64-bit
	// target layout: index gets the most room since it is expected to
	// dominate slot counts, epoch is generous enough that churn on a
	// single slot will not realistically wrap, and storage id is a
	// small per-process discriminator.
	IndexBits     = 40
	EpochBits     = 16
	StorageIDBits = 8
)

const (
	indexMask = (uint64(1) << IndexBits) - 1

	epochOffset = IndexBits
	epochMask   = ((uint64(1) << EpochBits) - 1) << epochOffset

	storageIDOffset = IndexBits + EpochBits
	storageIDMask   = ((uint64(1) << StorageIDBits) - 1) << storageIDOffset
)

func init() {
	// Keep the three lanes summing to exactly one machine word; a
	// mismatch here is an authoring bug in this file, not a runtime
	// condition, so it is checked unconditionally rather than gated by
	// debugcheck.
	const total = IndexBits + EpochBits + StorageIDBits
	var w Word
	if total != int(unsafe.Sizeof(w))*8 {
		panic("componentstore/internal/bits: lane widths do not sum to one machine word")
	}
}

// Word is the packed representation: a plain uint64, trivially copyable,
// with no lifetime of its own.
type Word uint64

// New packs index, epoch and storageID into a Word. In debug builds it
// asserts that none of the inputs overflow their allocated lane.
func New(index uint64, epoch uint16, storageID uint8) Word {
	debugcheck.Assertf(FitsIndex(index), "index %d does not fit in %d bits", index, IndexBits)
	return Word(index) |
		Word(epoch)<<epochOffset |
		Word(storageID)<<storageIDOffset
}

// Index extracts the index lane.
func (w Word) Index() uint64 { return uint64(w) & indexMask }

// Epoch extracts the epoch lane.
func (w Word) Epoch() uint16 { return uint16((uint64(w) & epochMask) >> epochOffset) }

// StorageID extracts the storage id lane.
func (w Word) StorageID() uint8 { return uint8((uint64(w) & storageIDMask) >> storageIDOffset) }

// FitsIndex reports whether index fits in the index lane.
func FitsIndex(index uint64) bool {
	return index&^indexMask == 0
}

// WithEpoch returns a copy of w with only the epoch lane overwritten to e;
// the index and storage id lanes are unchanged.
func (w Word) WithEpoch(e uint16) Word {
	return Word(uint64(w)&^epochMask) | Word(e)<<epochOffset
}
