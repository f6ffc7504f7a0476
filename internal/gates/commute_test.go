package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpeep/qpeep/internal/qir"
)

func TestCommutation_SameAxis(t *testing.T) {
	set := DefaultSet()

	tests := []struct {
		name string
		a, b qir.Gate
		want qir.Commutation
	}{
		{name: "Z diagonal pair", a: set.Z(), b: set.Rz(0.5), want: qir.CommuteYes},
		{name: "CZ with Rz", a: set.CZ(), b: set.Rz(0.5), want: qir.CommuteYes},
		{name: "S with T", a: set.S(), b: set.T(), want: qir.CommuteYes},
		{name: "X with Rx", a: set.X(), b: set.Rx(0.5), want: qir.CommuteYes},
		{name: "Rxx with X", a: set.Rxx(0.5), b: set.X(), want: qir.CommuteYes},
		{name: "Y with Ry", a: set.Y(), b: set.Ry(0.5), want: qir.CommuteYes},
		{name: "X with Z", a: set.X(), b: set.Z(), want: qir.CommuteNo},
		{name: "H with Z", a: set.H(), b: set.Z(), want: qir.CommuteNo},
		{name: "Rz with Rx", a: set.Rz(0.5), b: set.Rx(0.5), want: qir.CommuteNo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Commutes(tt.b))
		})
	}
}

func TestCommutation_SameKindSingleResource(t *testing.T) {
	set := DefaultSet()

	assert.Equal(t, qir.CommuteYes, set.H().Commutes(set.H()))
	// Swap instances on overlapping but distinct pairs do not commute, so
	// the same-kind rule must not apply to multi-resource kinds.
	assert.Equal(t, qir.CommuteNo, set.Swap().Commutes(set.Swap()))
}

func TestCommutation_RegisteredSequenceVerdict(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(KindRz, []qir.Kind{KindH, KindH}))
	set := NewSet(reg)

	// H alone does not commute with Rz, but it opens the registered [H H]
	// sequence, so the verdict defers to list matching.
	assert.Equal(t, qir.CommuteList, set.Rz(0.5).Commutes(set.H()))
	// The verdict is one-directional: nothing is registered for H.
	assert.Equal(t, qir.CommuteNo, set.H().Commutes(set.Rz(0.5)))
}

func TestCommutation_StreamControlsBlock(t *testing.T) {
	set := DefaultSet()

	assert.Equal(t, qir.CommuteNo, set.Measure().Commutes(set.Measure()))
	assert.Equal(t, qir.CommuteNo, set.Rz(0.5).Commutes(set.Measure()))
	assert.Equal(t, qir.CommuteNo, set.Z().Commutes(set.Deallocate()))
	assert.Equal(t, qir.CommuteNo, set.Flush().Commutes(set.Z()))
}
