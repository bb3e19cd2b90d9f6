package componentstore

// storage.go is the storage facade: it owns the dense data array, the
// per-slot refcount ("meta"), the free list, and the shared pending
// journal, and assigns itself a fresh storage id from a process-wide
// monotonic counter at construction.
//
// Mutating the storage (Create, SyncPending, Split, the *Mut iterators,
// Cursor) requires exclusive access to the Storage value; reading (Iter,
// IterAll) requires only shared access. Like the source, this package
// encodes that requirement through Go's ordinary pointer-receiver
// conventions rather than an internal lock: the journal is the only
// synchronization primitive inside the engine, and it protects nothing
// but the add-ref/sub-ref lists and the epoch table.
//
// © 2025 componentstore authors. MIT License.

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	internalbits "github.com/Voskan/componentstore/internal/bits"
	"github.com/Voskan/componentstore/internal/debugcheck"
	"github.com/Voskan/componentstore/internal/journal"
)

// storageIDCounter is the process-wide monotonic counter from which every
// Storage draws its id. Only uniqueness matters, so relaxed (default Go
// atomic) ordering is sufficient.
var storageIDCounter atomic.Uint32

func nextStorageID(logger *zap.Logger) uint8 {
	v := storageIDCounter.Add(1) - 1
	if v > 0xFF {
		logger.Error("storage id space exhausted", zap.Uint32("attempted", v))
		debugcheck.Assert(false, errStorageIDExhausted.Error())
	}
	return uint8(v)
}

// innerStore owns the dense backing array, the parallel refcount vector,
// and the free list of recycled slot descriptors.
type innerStore[T any] struct {
	data     []T
	meta     []uint16
	freeList []internalbits.Word
}

// create writes value into a slot, reusing one from the free list when
// available, and returns the packed handle bits for the slot (already
// carrying the correct epoch and storage id when recycled).
func (in *innerStore[T]) create(value T, storageID uint8) internalbits.Word {
	if n := len(in.freeList); n > 0 {
		word := in.freeList[n-1]
		in.freeList = in.freeList[:n-1]
		i := word.Index()
		debugcheck.Assert(in.meta[i] == 0, "recycled slot has a nonzero refcount")
		in.data[i] = value
		in.meta[i] = 1
		return word
	}

	i := len(in.data)
	debugcheck.Assert(len(in.data) == len(in.meta), "data/meta length mismatch")
	in.data = append(in.data, value)
	in.meta = append(in.meta, 1)
	return internalbits.New(uint64(i), 0, storageID)
}

// split partitions data at index into three disjoint pieces: the elements
// before index, the element at index, and the elements after. Because Go
// slice expressions over the same backing array never overlap, all three
// can be held and mutated simultaneously.
func (in *innerStore[T]) split(index uint64, storageID uint8) (Slice[T], *T, Slice[T]) {
	i := int(index)
	left := Slice[T]{data: in.data[:i], base: 0, storageID: storageID}
	cur := &in.data[i]
	right := Slice[T]{data: in.data[i+1:], base: i + 1, storageID: storageID}
	return left, cur, right
}

// Storage is the component storage engine: a dense, insertion-ordered
// vector of T plus the bookkeeping needed to hand out reference-counted
// handles to its elements.
type Storage[T any] struct {
	inner   innerStore[T]
	journal *journal.Journal
	id      uint8

	logger  *zap.Logger
	metrics metricsSink
	strict  bool

	// live mirrors the number of slots with meta > 0. It changes on Create
	// (always +1, a fresh or recycled slot starts referenced), on
	// SyncPending's add-ref path when a zombie slot's meta transitions
	// 0->1 (a handle pinned onto a FromSlice zombie; +1), and on
	// SyncPending's recycle path (always -1, the only way meta drops to
	// zero), so it is tracked incrementally instead of rescanned.
	live int
}

func newStorage[T any](opts []Option[T]) *Storage[T] {
	cfg := defaultConfig[T]()
	applyOptions(cfg, opts)

	var data []T
	var meta []uint16
	if cfg.capacity > 0 {
		data = make([]T, 0, cfg.capacity)
		meta = make([]uint16, 0, cfg.capacity)
	}

	return &Storage[T]{
		inner:   innerStore[T]{data: data, meta: meta},
		journal: journal.New(),
		id:      nextStorageID(cfg.logger),
		logger:  cfg.logger,
		metrics: newMetricsSink(cfg.registry),
		strict:  cfg.strict,
	}
}

// New creates a new empty Storage.
func New[T any](opts ...Option[T]) *Storage[T] {
	return newStorage[T](opts)
}

// NewWithCapacity creates a new empty Storage with the given initial
// capacity reserved in its backing arrays; it is equivalent to
// New(WithCapacity(capacity), opts...).
func NewWithCapacity[T any](capacity int, opts ...Option[T]) *Storage[T] {
	return newStorage[T](append([]Option[T]{WithCapacity[T](capacity)}, opts...))
}

// Default returns a new empty Storage, identical to New with no options.
func Default[T any]() *Storage[T] {
	return New[T]()
}

// FromSlice builds a Storage pre-populated with values, all of them
// "zombies": meta starts at zero for every slot, so the values are
// reachable through IterAll/IterAllMut but invisible to Iter/IterMut until
// a handle is pinned onto one via Pin and a SyncPending applies its add-ref.
func FromSlice[T any](values []T, opts ...Option[T]) *Storage[T] {
	cfg := defaultConfig[T]()
	applyOptions(cfg, opts)

	data := make([]T, len(values))
	copy(data, values)
	meta := make([]uint16, len(values))

	return &Storage[T]{
		inner:   innerStore[T]{data: data, meta: meta},
		journal: journal.New(),
		id:      nextStorageID(cfg.logger),
		logger:  cfg.logger,
		metrics: newMetricsSink(cfg.registry),
		strict:  cfg.strict,
	}
}

// checkf enforces a debug-build invariant, honoring WithDebugChecks: in
// strict mode (the default) it panics via debugcheck, exactly like every
// other assertion in the package; in non-strict mode it logs at Error
// level and lets the caller proceed (the caller is expected to then read
// garbage or a stale slot, which is the cost of opting out of strict
// mode). Like every debugcheck call, this entire check compiles away to
// nothing without the componentstore_debug build tag.
func (s *Storage[T]) checkf(cond bool, format string, args ...any) {
	if cond || !debugcheck.Enabled {
		debugcheck.Assertf(cond, format, args...)
		return
	}
	if s.strict {
		debugcheck.Assertf(cond, format, args...)
		return
	}
	s.logger.Sugar().Errorf(format, args...)
}

// StorageID returns the process-wide unique id assigned to this Storage.
func (s *Storage[T]) StorageID() uint8 { return s.id }

// Len returns the number of slots currently backing the storage, live or
// vacant. It is the bound used by iterators and the cursor.
func (s *Storage[T]) Len() int { return len(s.inner.data) }

// Create adds a new component to the storage and returns a strong Handle
// to it. The returned handle's refcount of 1 is reflected immediately in
// meta, bypassing the journal entirely.
func (s *Storage[T]) Create(value T) *Handle[T] {
	word := s.inner.create(value, s.id)
	s.live++
	s.metrics.incCreate(s.id)
	s.metrics.setLiveSlots(s.id, s.live)
	s.metrics.setFreeSlots(s.id, len(s.inner.freeList))
	return &Handle[T]{word: word, journal: s.journal, metrics: s.metrics}
}

// SyncPending drains the pending journal and applies its effects to the
// storage: epochs are padded up to the current data length, every
// pending add-ref is applied, and every pending sub-ref is applied,
// bumping the slot's epoch and pushing it onto the free list the moment
// its refcount reaches zero. This is the linearization point for every
// handle clone/release enqueued before the call took the journal's lock.
func (s *Storage[T]) SyncPending() {
	var appliedAdd, appliedSub, recycled int

	s.journal.Sync(len(s.inner.data), func(add, sub []int, epoch []journal.Epoch) {
		appliedAdd = len(add)
		appliedSub = len(sub)

		for _, i := range add {
			if s.inner.meta[i] == 0 {
				s.live++
			}
			s.inner.meta[i]++
		}

		for _, i := range sub {
			s.inner.meta[i]--
			if s.inner.meta[i] == 0 {
				epoch[i]++
				s.inner.freeList = append(s.inner.freeList, internalbits.New(uint64(i), epoch[i], s.id))
				recycled++
				s.live--
			}
		}
	})

	s.metrics.incSync(s.id)
	if recycled > 0 {
		s.metrics.incRecycled(s.id, recycled)
	}
	s.metrics.setLiveSlots(s.id, s.live)
	s.metrics.setFreeSlots(s.id, len(s.inner.freeList))

	if ce := s.logger.Check(zapcore.DebugLevel, "sync_pending"); ce != nil {
		ce.Write(
			zap.Int("applied_add", appliedAdd),
			zap.Int("applied_sub", appliedSub),
			zap.Int("recycled", recycled),
			zap.Int("free_list_len", len(s.inner.freeList)),
		)
	}
}

// At returns a pointer to the element referenced by h, playing the role of
// the source's Index/IndexMut operators: callers read through it for
// shared access and write through it for exclusive access.
func (s *Storage[T]) At(h *Handle[T]) *T {
	s.checkf(h.word.StorageID() == s.id, "handle belongs to a different storage (got %d, want %d)", h.word.StorageID(), s.id)
	i := h.word.Index()
	s.checkf(i < uint64(len(s.inner.data)), "handle index %d out of range (len %d)", i, len(s.inner.data))
	return &s.inner.data[i]
}

// Pin produces a strong Handle to the element an iterator Item refers to,
// pushing an add-ref and reading the slot's current epoch under a single
// journal lock. Cursor items are pinned with CursorItem.Pin instead.
func (s *Storage[T]) Pin(item Item[T]) *Handle[T] {
	epoch := s.journal.PushAddAndReadEpoch(item.index)
	word := internalbits.New(uint64(item.index), epoch, s.id)
	return &Handle[T]{word: word, journal: s.journal, metrics: s.metrics}
}

// Split forwards to the inner store's split, returning the (left, current,
// right) triple of disjoint views around h's slot.
func (s *Storage[T]) Split(h *Handle[T]) (Slice[T], *T, Slice[T]) {
	s.checkf(h.word.StorageID() == s.id, "handle belongs to a different storage (got %d, want %d)", h.word.StorageID(), s.id)
	return s.inner.split(h.word.Index(), s.id)
}

// Cursor returns a streaming cursor positioned before the first slot.
func (s *Storage[T]) Cursor() *Cursor[T] {
	return &Cursor[T]{storage: s, index: 0}
}

// CursorEnd returns a streaming cursor positioned after the last slot, for
// backwards iteration via Prev.
func (s *Storage[T]) CursorEnd() *Cursor[T] {
	return &Cursor[T]{storage: s, index: len(s.inner.data)}
}
