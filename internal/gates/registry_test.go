package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpeep/qpeep/internal/qir"
)

func TestRegistry_Register_RejectsEmpty(t *testing.T) {
	reg := NewRegistry()

	require.Error(t, reg.Register(KindRz, nil))
	require.Error(t, reg.Register("", []qir.Kind{KindX}))
}

func TestRegistry_SequencesFor_OrderedByLength(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(KindRz, []qir.Kind{KindX, KindX, KindX, KindX}))
	require.NoError(t, reg.Register(KindRz, []qir.Kind{KindX, KindX}))
	require.NoError(t, reg.Register(KindRz, []qir.Kind{KindH, KindH}))

	seqs := reg.SequencesFor(KindRz)
	require.Len(t, seqs, 3)
	assert.Equal(t, []qir.Kind{KindX, KindX}, seqs[0])
	assert.Equal(t, []qir.Kind{KindH, KindH}, seqs[1], "equal lengths keep registration order")
	assert.Equal(t, []qir.Kind{KindX, KindX, KindX, KindX}, seqs[2])
}

func TestRegistry_Register_CopiesSequence(t *testing.T) {
	reg := NewRegistry()
	seq := []qir.Kind{KindX, KindX}
	require.NoError(t, reg.Register(KindRz, seq))

	seq[0] = KindH
	assert.Equal(t, qir.Kind(KindX), reg.SequencesFor(KindRz)[0][0])
}

func TestRegistry_KindsAndLen(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(KindRz, []qir.Kind{KindX, KindX}))
	require.NoError(t, reg.Register(KindCZ, []qir.Kind{KindH, KindH}))
	require.NoError(t, reg.Register(KindCZ, []qir.Kind{KindX, KindX}))

	assert.Equal(t, []qir.Kind{KindCZ, KindRz}, reg.Kinds())
	assert.Equal(t, 3, reg.Len())
	assert.Nil(t, reg.SequencesFor(KindH))
}
