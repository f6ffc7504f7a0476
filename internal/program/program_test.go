package program

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpeep/qpeep/internal/gates"
	"github.com/qpeep/qpeep/internal/qir"
)

const bellCleanup = `
name: bell_cleanup
ops:
  - gate: H
    targets: [[0]]
  - gate: Rz
    angle: 0.5
    targets: [[1]]
  - gate: CZ
    targets: [[0, 1]]
  - flush: true
`

func TestParse_BellCleanup(t *testing.T) {
	p, err := Parse([]byte(bellCleanup))
	require.NoError(t, err)

	assert.Equal(t, "bell_cleanup", p.Name)
	require.Len(t, p.Ops, 4)
	assert.Equal(t, gates.KindH, p.Ops[0].Gate)
	require.NotNil(t, p.Ops[1].Angle)
	assert.Equal(t, 0.5, *p.Ops[1].Angle)
	assert.Equal(t, [][]int{{0, 1}}, p.Ops[2].Targets)
	assert.True(t, p.Ops[3].Flush)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\nops:\n  - gate: H\n    qubits: [[0]]\n"))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bellCleanup), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bell_cleanup", p.Name)
}

func TestBuild_ConstructsInstructions(t *testing.T) {
	p, err := Parse([]byte(bellCleanup))
	require.NoError(t, err)

	insts, err := p.Build(gates.DefaultSet())
	require.NoError(t, err)
	require.Len(t, insts, 4)

	assert.Equal(t, "H [[0]]", insts[0].String())
	assert.Equal(t, "Rz(0.5) [[1]]", insts[1].String())
	assert.Equal(t, "CZ [[0 1]]", insts[2].String())
	assert.True(t, insts[3].Terminal())
}

func TestValidate_Errors(t *testing.T) {
	set := gates.DefaultSet()
	angle := 0.5

	tests := []struct {
		name string
		p    Program
		code ValidationErrorCode
		op   int
	}{
		{
			name: "empty program",
			p:    Program{Name: "x"},
			code: ErrCodeEmptyProgram,
			op:   -1,
		},
		{
			name: "unknown gate",
			p:    Program{Ops: []Op{{Gate: "Q", Targets: [][]int{{0}}}}},
			code: ErrCodeUnknownGate,
			op:   0,
		},
		{
			name: "missing angle",
			p:    Program{Ops: []Op{{Gate: gates.KindRz, Targets: [][]int{{0}}}}},
			code: ErrCodeBadAngle,
			op:   0,
		},
		{
			name: "unexpected angle",
			p:    Program{Ops: []Op{{Gate: gates.KindX, Angle: &angle, Targets: [][]int{{0}}}}},
			code: ErrCodeBadAngle,
			op:   0,
		},
		{
			name: "wrong arity",
			p:    Program{Ops: []Op{{Gate: gates.KindCZ, Targets: [][]int{{0}}}}},
			code: ErrCodeBadTargets,
			op:   0,
		},
		{
			name: "no targets",
			p:    Program{Ops: []Op{{Gate: gates.KindX}}},
			code: ErrCodeBadTargets,
			op:   0,
		},
		{
			name: "negative resource",
			p:    Program{Ops: []Op{{Gate: gates.KindX, Targets: [][]int{{-1}}}}},
			code: ErrCodeBadTargets,
			op:   0,
		},
		{
			name: "duplicate resource",
			p:    Program{Ops: []Op{{Gate: gates.KindCZ, Targets: [][]int{{1, 1}}}}},
			code: ErrCodeBadTargets,
			op:   0,
		},
		{
			name: "flush with gate fields",
			p:    Program{Ops: []Op{{Flush: true, Gate: gates.KindX}}},
			code: ErrCodeBadOp,
			op:   0,
		},
		{
			name: "op without gate",
			p:    Program{Ops: []Op{{Targets: [][]int{{0}}}}},
			code: ErrCodeBadOp,
			op:   0,
		},
		{
			name: "second op named",
			p: Program{Ops: []Op{
				{Gate: gates.KindX, Targets: [][]int{{0}}},
				{Gate: "Q", Targets: [][]int{{0}}},
			}},
			code: ErrCodeUnknownGate,
			op:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate(set)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.code, ve.Code)
			assert.Equal(t, tt.op, ve.Op)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestValidate_BarrierIsVariadic(t *testing.T) {
	p := Program{Ops: []Op{{Gate: gates.KindBarrier, Targets: [][]int{{0, 1, 2}}}}}
	require.NoError(t, p.Validate(gates.DefaultSet()))
}

func TestBuild_ResourceGroupsPreserved(t *testing.T) {
	p := Program{Ops: []Op{{Gate: gates.KindCZ, Targets: [][]int{{3, 7}}}}}
	insts, err := p.Build(gates.DefaultSet())
	require.NoError(t, err)
	require.Len(t, insts, 1)
	assert.Equal(t, [][]qir.Resource{{3, 7}}, insts[0].Groups)
}
