package qir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpeep/qpeep/internal/qir"
)

func TestMarshalCanonical_SortsObjectKeys(t *testing.T) {
	out, err := qir.MarshalCanonical(map[string]any{
		"zeta":  int64(1),
		"alpha": "x",
		"mid":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"x","mid":true,"zeta":1}`, string(out))
}

func TestMarshalCanonical_FloatsRoundTrip(t *testing.T) {
	out, err := qir.MarshalCanonical(map[string]any{"angle": 0.5})
	require.NoError(t, err)
	assert.Equal(t, `{"angle":0.5}`, string(out))
}

func TestMarshalCanonical_NestedArrays(t *testing.T) {
	out, err := qir.MarshalCanonical([]any{
		[]any{int64(0), int64(1)},
		"CZ",
	})
	require.NoError(t, err)
	assert.Equal(t, `[[0,1],"CZ"]`, string(out))
}

func TestMarshalCanonical_NFCNormalizesStrings(t *testing.T) {
	// "e" + combining acute accent must render identically to the
	// precomposed "é".
	decomposed := "e\u0301"
	precomposed := "\u00e9"

	a, err := qir.MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := qir.MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_EscapesControlCharacters(t *testing.T) {
	out, err := qir.MarshalCanonical("a\"b\\c\nd")
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\nd"`, string(out))
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := qir.MarshalCanonical(nil)
	require.Error(t, err)

	_, err = qir.MarshalCanonical(map[string]any{"k": nil})
	require.Error(t, err)
}

func TestMarshalCanonical_RejectsUnsupportedTypes(t *testing.T) {
	_, err := qir.MarshalCanonical(struct{}{})
	require.Error(t, err)
}
