package componentstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cs "github.com/Voskan/componentstore/pkg/componentstore"
)

func Test_WeakHandle_Upgrade_Succeeds_While_Component_Alive(t *testing.T) {
	t.Parallel()

	s := cs.New[string]()
	h := s.Create("alive")
	defer h.Release()

	w := h.Downgrade()
	up, err := w.Upgrade()
	require.NoError(t, err)
	defer up.Release()

	assert.Equal(t, "alive", *s.At(up))
}

func Test_WeakHandle_Upgrade_Fails_After_Recycle(t *testing.T) {
	t.Parallel()

	s := cs.New[string]()
	h := s.Create("first")
	w := h.Downgrade()

	h.Release()
	s.SyncPending()

	_, err := w.Upgrade()
	assert.ErrorIs(t, err, cs.ErrDeadComponent)
}

func Test_WeakHandle_Epoch_Distinguishes_Incarnations_After_Recycle(t *testing.T) {
	t.Parallel()

	s := cs.New[int]()
	h1 := s.Create(1)
	w1 := h1.Downgrade()

	h1.Release()
	s.SyncPending()

	h2 := s.Create(2)
	defer h2.Release()

	_, err := w1.Upgrade()
	assert.ErrorIs(t, err, cs.ErrDeadComponent, "w1's epoch should not match the recycled slot's new incarnation")

	w2 := h2.Downgrade()
	up, err := w2.Upgrade()
	require.NoError(t, err)
	defer up.Release()
	assert.Equal(t, 2, *s.At(up))
}

func Test_WeakHandle_Clone_Does_Not_Pin_Component(t *testing.T) {
	t.Parallel()

	s := cs.New[int]()
	h := s.Create(1)
	w := h.Downgrade()
	w2 := w.Clone()

	h.Release()
	s.SyncPending()

	_, err1 := w.Upgrade()
	_, err2 := w2.Upgrade()
	assert.ErrorIs(t, err1, cs.ErrDeadComponent)
	assert.ErrorIs(t, err2, cs.ErrDeadComponent)
}

func Test_WeakHandle_Equal(t *testing.T) {
	t.Parallel()

	s := cs.New[int]()
	h := s.Create(1)
	defer h.Release()

	w1 := h.Downgrade()
	w2 := h.Downgrade()

	assert.True(t, w1.Equal(w2))
}
