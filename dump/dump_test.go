package dump_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashwinvis/zsh/dump"
	"github.com/ashwinvis/zsh/patterns"
	"github.com/ashwinvis/zsh/program"
	"github.com/ashwinvis/zsh/wordcode"
)

func sampleProgram() *program.Program {
	buf := wordcode.NewBuffer()
	pool := wordcode.NewStringPool()
	buf.Add(wordcode.Simple(1))
	buf.Add(pool.AddString("echo"))
	pats := patterns.NewTable()
	return program.Build(buf, pool, pats)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.zwc")

	p := sampleProgram()
	require.NoError(t, dump.Write(path, []dump.Entry{{Name: "myfunc", Prog: p}}))

	entries, err := dump.Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "myfunc", entries[0].Name)
	require.Equal(t, p.Words, entries[0].Prog.Words)
	require.Equal(t, string(p.Strs), string(entries[0].Prog.Strs))
}

func TestWriteReadMultipleEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.zwc")

	p1 := sampleProgram()
	p2 := sampleProgram()
	require.NoError(t, dump.Write(path, []dump.Entry{{Name: "a", Prog: p1}, {Name: "b", Prog: p2}}))

	entries, err := dump.Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Name)
	require.Equal(t, "b", entries[1].Name)
}

func TestOpenBelowThresholdFallsBackToRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.zwc")

	p := sampleProgram()
	require.NoError(t, dump.Write(path, []dump.Entry{{Name: "f", Prog: p}}))

	entries, err := dump.Open(path, 1<<30)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestReadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.zwc")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 0, 0, 0, 0, 0, 0}, 0644))

	_, err := dump.Read(path)
	require.Error(t, err, "expected error for bad magic")
}
