package program_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashwinvis/zsh/patterns"
	"github.com/ashwinvis/zsh/program"
	"github.com/ashwinvis/zsh/wordcode"
)

func TestBuildSnapshotsBuffer(t *testing.T) {
	buf := wordcode.NewBuffer()
	pool := wordcode.NewStringPool()
	buf.Add(wordcode.Simple(1))
	buf.Add(pool.AddString("echo"))
	pats := patterns.NewTable()

	p := program.Build(buf, pool, pats)
	require.Equal(t, 3, p.Len(), "Build appends the terminating WC_END word")
	require.Equal(t, wordcode.End(), p.Words[2])

	buf.Add(wordcode.End())
	require.Equal(t, 3, p.Len(), "Program should not observe later mutation of the source buffer")
}

func TestDupIsIndependent(t *testing.T) {
	buf := wordcode.NewBuffer()
	buf.Add(wordcode.Simple(0))
	pool := wordcode.NewStringPool()
	p := program.Build(buf, pool, patterns.NewTable())

	d := p.Dup()
	d.Words[0] = wordcode.End()
	require.NotEqual(t, p.Words[0], d.Words[0], "Dup should not alias the original Words slice")
	require.Equal(t, program.Heap, d.Alloc, "Dup should always be Heap-allocated")
}

func TestReleaseRunsCallbackOnce(t *testing.T) {
	calls := 0
	p := program.FromMapped(nil, nil, patterns.NewTable(), func() { calls++ })
	p.Retain()
	p.Release()
	require.Zero(t, calls, "release callback should not run while a reference remains")
	p.Release()
	require.Equal(t, 1, calls, "expected release callback exactly once")
}
