// Package journal implements the deferred refcount mechanism that lets
// handles be cloned or dropped from shared contexts without exclusive
// access to the owning storage.
//
// The critical sections here are always O(1) list pushes or O(pending)
// drains; there is never blocking I/O inside the lock, so a plain mutex
// plays the role the source fills with a spinlock.
//
// © 2025 componentstore authors. MIT License.
package journal

import "sync"

// Epoch is the per-slot generation counter. It is bumped exactly once per
// slot each time that slot's refcount transitions to zero.
type Epoch = uint16

// Journal holds the pending add-ref/sub-ref intents plus the epoch table,
// all protected by a single mutex. It is shared (via pointer) between a
// Storage and every Handle/WeakHandle minted from it.
type Journal struct {
	mu     sync.Mutex
	addRef []int
	subRef []int
	epoch  []Epoch
}

// New returns an empty journal with no known epochs.
func New() *Journal {
	return &Journal{}
}

// PushAdd enqueues a pending add-ref against slot i.
func (j *Journal) PushAdd(i int) {
	j.mu.Lock()
	j.addRef = append(j.addRef, i)
	j.mu.Unlock()
}

// PushSub enqueues a pending sub-ref against slot i.
func (j *Journal) PushSub(i int) {
	j.mu.Lock()
	j.subRef = append(j.subRef, i)
	j.mu.Unlock()
}

// ReadEpoch returns the live epoch for slot i, or 0 if i is beyond the
// current epoch table (the slot has never transitioned to zero, or has
// never existed).
func (j *Journal) ReadEpoch(i int) Epoch {
	j.mu.Lock()
	e := j.readEpochLocked(i)
	j.mu.Unlock()
	return e
}

func (j *Journal) readEpochLocked(i int) Epoch {
	if i < 0 || i >= len(j.epoch) {
		return 0
	}
	return j.epoch[i]
}

// PushAddAndReadEpoch atomically enqueues an add-ref against slot i and
// returns its current epoch under a single lock acquisition. This is the
// primitive behind Pin, WeakHandle.Upgrade's success path, and
// CursorItem.Pin: exactly one journal lock, no race between reading the
// epoch and registering the new reference.
func (j *Journal) PushAddAndReadEpoch(i int) Epoch {
	j.mu.Lock()
	e := j.readEpochLocked(i)
	j.addRef = append(j.addRef, i)
	j.mu.Unlock()
	return e
}

// TryUpgrade checks wantEpoch against the live epoch for slot i and, if
// they match, enqueues an add-ref in the same critical section. It reports
// whether the upgrade succeeded.
func (j *Journal) TryUpgrade(i int, wantEpoch Epoch) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.readEpochLocked(i) != wantEpoch {
		return false
	}
	j.addRef = append(j.addRef, i)
	return true
}

// Sync is the linearization point: it pads the epoch table up to n slots,
// then invokes apply once with the pending add-ref list, sub-ref list,
// and a mutable view of the epoch table, all while still holding the
// journal's lock. Holding the lock across the whole callback (not just
// the drain) is what makes epoch bumps inside apply race-free against a
// concurrent PushAdd/PushSub/ReadEpoch from another goroutine: those only
// ever observe the epoch table either fully before or fully after a sync,
// never mid-mutation. The slices passed to apply are owned by the
// journal; callers must not retain them past the call.
func (j *Journal) Sync(n int, apply func(add, sub []int, epoch []Epoch)) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for len(j.epoch) < n {
		j.epoch = append(j.epoch, 0)
	}

	add := j.addRef
	j.addRef = j.addRef[:0]
	sub := j.subRef
	j.subRef = j.subRef[:0]

	apply(add, sub, j.epoch)
}
