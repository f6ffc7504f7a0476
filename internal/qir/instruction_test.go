package qir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpeep/qpeep/internal/gates"
	"github.com/qpeep/qpeep/internal/qir"
)

func TestInstruction_Resources_FlattensGroups(t *testing.T) {
	set := gates.DefaultSet()
	inst := qir.NewInstruction(set.CZ(), []qir.Resource{2, 0})

	assert.Equal(t, []qir.Resource{2, 0}, inst.Resources())
}

func TestInstruction_Resources_DeduplicatesAcrossGroups(t *testing.T) {
	set := gates.DefaultSet()
	inst := qir.NewInstruction(set.Barrier(), []qir.Resource{1}, []qir.Resource{0, 1})

	assert.Equal(t, []qir.Resource{1, 0}, inst.Resources())
}

func TestInstruction_Touches(t *testing.T) {
	set := gates.DefaultSet()
	inst := qir.NewInstruction(set.CZ(), []qir.Resource{0, 3})

	assert.True(t, inst.Touches(0))
	assert.True(t, inst.Touches(3))
	assert.False(t, inst.Touches(1))
}

func TestNewInstruction_CopiesGroups(t *testing.T) {
	set := gates.DefaultSet()
	group := []qir.Resource{0, 1}
	inst := qir.NewInstruction(set.CZ(), group)

	group[0] = 9
	assert.Equal(t, qir.Resource(0), inst.Groups[0][0], "instruction must not alias caller's slice")
}

func TestInstruction_EqualValue(t *testing.T) {
	set := gates.DefaultSet()

	a := qir.NewInstruction(set.Rz(0.5), []qir.Resource{1})
	b := qir.NewInstruction(set.Rz(0.5), []qir.Resource{1})
	c := qir.NewInstruction(set.Rz(0.25), []qir.Resource{1})
	d := qir.NewInstruction(set.Rz(0.5), []qir.Resource{2})

	assert.True(t, a.EqualValue(b), "identical gate and groups compare equal")
	assert.False(t, a == b, "equal-valued instructions keep distinct identity")
	assert.False(t, a.EqualValue(c), "different angle")
	assert.False(t, a.EqualValue(d), "different resources")
	assert.False(t, a.EqualValue(nil))
	assert.True(t, a.EqualValue(a))
}

func TestInstruction_Terminal(t *testing.T) {
	set := gates.DefaultSet()

	marker := qir.NewInstruction(set.Flush())
	regular := qir.NewInstruction(set.X(), []qir.Resource{0})

	assert.True(t, marker.Terminal())
	assert.False(t, regular.Terminal())
}

func TestInstruction_String(t *testing.T) {
	set := gates.DefaultSet()

	inst := qir.NewInstruction(set.Rz(0.5), []qir.Resource{1})
	assert.Equal(t, "Rz(0.5) [[1]]", inst.String())

	cz := qir.NewInstruction(set.CZ(), []qir.Resource{0, 1})
	assert.Equal(t, "CZ [[0 1]]", cz.String())

	marker := qir.NewInstruction(set.Flush())
	assert.Equal(t, "Flush", marker.String())
}

func TestCommutation_String(t *testing.T) {
	require.Equal(t, "no", qir.CommuteNo.String())
	require.Equal(t, "yes", qir.CommuteYes.String())
	require.Equal(t, "list", qir.CommuteList.String())
}
