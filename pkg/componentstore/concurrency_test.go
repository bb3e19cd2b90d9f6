package componentstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	cs "github.com/Voskan/componentstore/pkg/componentstore"
)

// Clone and Release never touch the Storage directly, so concurrent
// goroutines may call them on a shared Handle without any external lock;
// only SyncPending, on the owning goroutine, actually mutates the storage.
func Test_Handle_Clone_Release_Are_Safe_From_Many_Goroutines(t *testing.T) {
	t.Parallel()

	s := cs.New[int]()
	h := s.Create(1)

	const workers = 32
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			clone := h.Clone()
			clone.Release()
			return nil
		})
	}
	assert.NoError(t, g.Wait())

	h.Release()
	s.SyncPending()

	assert.Equal(t, 0, s.Iter().Count(), "every clone/release pair should cancel out, leaving the slot recycled")
}

func Test_WeakHandle_Upgrade_Is_Safe_From_Many_Goroutines(t *testing.T) {
	t.Parallel()

	s := cs.New[int]()
	h := s.Create(1)
	defer h.Release()
	w := h.Downgrade()

	const workers = 32
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			up, err := w.Upgrade()
			if err != nil {
				return err
			}
			up.Release()
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}
