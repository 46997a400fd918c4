package wordcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinvis/zsh/wordcode"
)

func TestEncodeDecodeShortStringRoundTrip(t *testing.T) {
	for _, s := range [][]byte{[]byte("a"), []byte("ab"), []byte("abc")} {
		w := wordcode.EncodeShortString(s, false)
		require.Falsef(t, wordcode.RefIsLong(w) || wordcode.RefIsEmpty(w), "short string %q misclassified", s)
		got := wordcode.DecodeShortString(w)
		assert.Equal(t, s, got)
	}
}

func TestEncodeEmptyString(t *testing.T) {
	w := wordcode.EncodeEmptyString(true)
	require.True(t, wordcode.RefIsEmpty(w), "expected empty marker")
	require.True(t, wordcode.RefHasTokens(w), "expected has-tokens bit set")
}

func TestStringPoolDeduplicatesWithinScope(t *testing.T) {
	p := wordcode.NewStringPool()
	s := "a-somewhat-longer-string"
	r1 := p.AddString(s)
	r2 := p.AddString(s)
	require.Equal(t, r1, r2, "identical strings in same scope got different references")
}

func TestStringPoolDoesNotDeduplicateAcrossFunctionScopes(t *testing.T) {
	p := wordcode.NewStringPool()
	s := "a-somewhat-longer-string"
	r1 := p.AddString(s)
	saved := p.EnterFunction()
	base := p.Base()
	r2 := p.AddString(s)
	p.ExitFunction(saved)
	// Long references are relative to their own scope's base, so compare
	// the absolute pool offsets the two references resolve to.
	sameSlot := wordcode.LongRefOffset(r1) == base+wordcode.LongRefOffset(r2)
	require.False(t, sameSlot, "strings in different function scopes should not share a slot")
}

func TestStringPoolLongRefRoundTrip(t *testing.T) {
	p := wordcode.NewStringPool()
	s := "definitely-longer-than-three-bytes"
	w := p.AddString(s)
	require.True(t, wordcode.RefIsLong(w), "expected long reference")
	off := wordcode.LongRefOffset(w)
	data := p.Bytes()
	got := data[off : off+uint32(len(s))]
	assert.Equal(t, s, string(got))
}
