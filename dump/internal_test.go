package dump

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashwinvis/zsh/patterns"
	"github.com/ashwinvis/zsh/program"
	"github.com/ashwinvis/zsh/wordcode"
)

func sampleEntry() Entry {
	buf := wordcode.NewBuffer()
	pool := wordcode.NewStringPool()
	buf.Add(wordcode.Simple(1))
	buf.Add(pool.AddString("echo"))
	return Entry{Name: "f", Prog: program.Build(buf, pool, patterns.NewTable())}
}

// TestCrossEndianCopiesAgree writes a dump, then independently decodes
// both the little-endian and the big-endian copy it contains, regardless
// of which one the host's native order would pick. Both must yield the
// same program: the dual-copy format exists precisely so either
// magic-tagged copy is readable on any host.
func TestCrossEndianCopiesAgree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cross.zwc")
	require.NoError(t, Write(path, []Entry{sampleEntry()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	leOrder, err := detectMagicOrder(data, 0)
	require.NoError(t, err)
	require.Equal(t, binary.LittleEndian, leOrder)
	require.Equal(t, magicWord, leOrder.Uint32(data[0:4]), "the little-endian copy should start at offset 0")

	leOffset := int(leOrder.Uint32(data[4:8]) & otherOffsetMask)
	beOrder, err := detectMagicOrder(data, leOffset)
	require.NoError(t, err)
	require.Equal(t, binary.BigEndian, beOrder)

	leEntries, err := decode(data[0:], binary.LittleEndian, nil)
	require.NoError(t, err)
	beEntries, err := decode(data[leOffset:], binary.BigEndian, nil)
	require.NoError(t, err)

	require.Len(t, leEntries, 1)
	require.Len(t, beEntries, 1)
	require.Equal(t, leEntries[0].Name, beEntries[0].Name)
	require.Equal(t, leEntries[0].Prog.Words, beEntries[0].Prog.Words)
	require.Equal(t, string(leEntries[0].Prog.Strs), string(beEntries[0].Prog.Strs))
}

// TestLocateCopyFindsOtherCopyOffset confirms the big-endian copy's header
// word correctly points back to the little-endian copy at file offset 0.
func TestLocateCopyFindsOtherCopyOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offsets.zwc")
	require.NoError(t, Write(path, []Entry{sampleEntry()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	leOffset := int(binary.LittleEndian.Uint32(data[4:8]) & otherOffsetMask)
	beOtherOffset := int(binary.BigEndian.Uint32(data[leOffset+4:leOffset+8]) & otherOffsetMask)
	require.Equal(t, 0, beOtherOffset, "the big-endian copy's header should point back to offset 0")
}
