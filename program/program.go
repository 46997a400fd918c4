// Package program implements the program builder: it takes the working
// state a compile produced (a wordcode.Buffer, its wordcode.StringPool,
// and a patterns.Table of reserved-but-unfilled pattern slots) and
// finalizes it into an immutable, relocatable Program record ready to
// hand to a dump writer or an executor.
package program

import (
	"github.com/ashwinvis/zsh/patterns"
	"github.com/ashwinvis/zsh/wordcode"
)

// Alloc records how a Program's backing storage was obtained, mirroring
// the reference's three-way HEAP/REALLOC/MMAP distinction: it governs
// whether Release() must do anything at all.
type Alloc int

const (
	// Heap means the Program's slices are ordinary garbage-collected Go
	// memory; Release is a no-op.
	Heap Alloc = iota
	// Real means the Program was built by re-slicing a larger buffer
	// (e.g. one dump-file read); Release drops the reference.
	Real
	// Mapped means the Program's Strs alias a memory-mapped dump file
	// (its Words are a decoded copy); Release must run the associated
	// unmap callback exactly once all references have gone away.
	Mapped
)

// Program is the finished, self-contained word-code unit: one function
// body's (or one top-level script's) instruction stream plus the string
// bytes its references point into and the pattern slots its CASE/COND
// instructions index.
type Program struct {
	Words    []wordcode.Word
	Strs     []byte
	Patterns *patterns.Table

	Alloc Alloc

	refs    int32
	release func()
}

// Build finalizes buf/pool/pats into a heap-allocated Program. It makes
// defensive copies so later mutation of the compiler's working buffers
// (e.g. a second compile reusing the same CompileCtx) cannot corrupt an
// already-built Program, and appends the terminating WC_END word every
// finished program ends on.
func Build(buf *wordcode.Buffer, pool *wordcode.StringPool, pats *patterns.Table) *Program {
	words := buf.Snapshot()
	words = append(words, wordcode.End())
	return &Program{
		Words:    words,
		Strs:     append([]byte(nil), pool.Bytes()...),
		Patterns: pats,
		Alloc:    Heap,
		refs:     1,
	}
}

// FromMapped builds a Mapped Program around words and strs as given, without
// copying them; strs may alias externally owned memory (a dump file's
// mmap'd region). release, if non-nil, is invoked exactly once, when the
// last reference is dropped via Release.
func FromMapped(words []wordcode.Word, strs []byte, pats *patterns.Table, release func()) *Program {
	return &Program{
		Words:    words,
		Strs:     strs,
		Patterns: pats,
		Alloc:    Mapped,
		refs:     1,
		release:  release,
	}
}

// Dup returns a deep copy of p with its own independent backing storage,
// always Heap-allocated regardless of p's own Alloc kind: the reference
// implementation's dupeprog(), used when a mmap'd function body must
// survive past its dump file being closed.
func (p *Program) Dup() *Program {
	words := make([]wordcode.Word, len(p.Words))
	copy(words, p.Words)
	strs := make([]byte, len(p.Strs))
	copy(strs, p.Strs)
	return &Program{
		Words:    words,
		Strs:     strs,
		Patterns: p.Patterns,
		Alloc:    Heap,
		refs:     1,
	}
}

// Retain increments p's reference count. Callers that hand out a shared
// *Program (the dump-loader cache) must Retain before sharing and the
// receiver must Release when done.
func (p *Program) Retain() {
	p.refs++
}

// Release decrements p's reference count, running the mapped-memory
// release callback once it reaches zero. Safe to call on a Heap-allocated
// Program (it simply has no callback to run).
func (p *Program) Release() {
	p.refs--
	if p.refs > 0 {
		return
	}
	if p.release != nil {
		p.release()
		p.release = nil
	}
}

// Len returns the word count (the reference's eclen field).
func (p *Program) Len() int { return len(p.Words) }

// NumPatterns returns the number of reserved pattern slots (ecnpats).
func (p *Program) NumPatterns() int {
	if p.Patterns == nil {
		return 0
	}
	return p.Patterns.Len()
}
