package wordcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinvis/zsh/wordcode"
)

func TestMakeWordRoundTrip(t *testing.T) {
	cases := []struct {
		kind  wordcode.Kind
		flags uint8
		data  uint32
	}{
		{wordcode.KList, wordcode.ZSync | wordcode.ZEnd, 17},
		{wordcode.KSublist, wordcode.SublistOr | wordcode.SublistNot, 0},
		{wordcode.KSimple, 0, 5},
		{wordcode.KCase, wordcode.CaseAnd, wordcode.MaxData},
	}
	for _, c := range cases {
		w := wordcode.Make(c.kind, c.flags, c.data)
		assert.Equal(t, c.kind, w.Kind())
		assert.Equal(t, c.flags, w.Flags())
		assert.Equal(t, c.data, w.Data())
	}
}

func TestWithDataPreservesKindAndFlags(t *testing.T) {
	w := wordcode.Make(wordcode.KList, wordcode.ZSync, 3)
	w2 := w.WithData(99)
	require.Equal(t, wordcode.KList, w2.Kind())
	require.Equal(t, wordcode.ZSync, w2.Flags())
	require.Equal(t, uint32(99), w2.Data())
}

func TestBufferInsertAndDelete(t *testing.T) {
	b := wordcode.NewBuffer()
	b.Add(wordcode.Raw(1))
	b.Add(wordcode.Raw(2))
	p := b.Add(wordcode.Raw(3))
	b.Insert(p, 1)
	require.Zero(t, b.Get(p), "expected zero placeholder at inserted slot")
	b.Set(p, wordcode.Raw(42))
	require.Equal(t, wordcode.Raw(3), b.Get(p+1), "Insert did not shift trailing words")
	b.Delete(0)
	require.Equal(t, wordcode.Raw(2), b.Get(0), "Delete did not shift words left")
	require.Equal(t, 3, b.Len())
}

func TestBufferTruncate(t *testing.T) {
	b := wordcode.NewBuffer()
	b.Add(wordcode.Raw(1))
	p := b.Len()
	b.Add(wordcode.Raw(2))
	b.Add(wordcode.Raw(3))
	b.Truncate(p)
	require.Equal(t, p, b.Len())
}
