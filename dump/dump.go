// Package dump implements the persistent dump-file format: writing one or
// more named Programs into a single file, and reading them back either by
// a plain read or by mmap. Every file contains the whole payload twice,
// once little-endian and once big-endian, each copy's header pointing at
// the other's start offset, so a reader on either architecture can find
// and decode the copy written in its own byte order.
package dump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ashwinvis/zsh/patterns"
	"github.com/ashwinvis/zsh/program"
	"github.com/ashwinvis/zsh/wordcode"
	"golang.org/x/sync/singleflight"
	"golang.org/x/sys/unix"
)

// magicWord identifies a copy's prelude regardless of which byte order
// wrote it: a reader tries decoding the four magic bytes both ways and
// takes whichever interpretation reproduces magicWord. This only works
// because magicWord is not a byte-palindrome (it differs from its own
// 32-bit byte-reversal); a magic/swapped-magic pair that are exact
// byte-reversals of each other collide on disk (LittleEndian.PutUint32 of
// one equals BigEndian.PutUint32 of the other) and cannot be told apart,
// which is why this package uses one constant instead of two.
const magicWord uint32 = 0x0a0b0c0d

const nameSize = 40 // bytes; padded/truncated function name per directory entry
const versionSize = 40
const otherOffsetMask = 0x00FFFFFF // word 1 reserves its top byte for flags

// Version is stamped into every dump file this package writes. Read and
// Open reject a file whose stamped version differs from it.
var Version = "zcompile-1"

// Entry is one named Program to be packed into a dump file, or one
// recovered from reading one.
type Entry struct {
	Name string
	Prog *program.Program
}

type dirRecord struct {
	name       [nameSize]byte
	startWords uint32
	lenWords   uint32
	npats      uint32
	startStrsB uint32
	lenStrsB   uint32
}

// Write packs entries into a single dump file at path: the full payload is
// emitted twice, once in each byte order, each copy's header recording the
// byte offset of the other.
func Write(path string, entries []Entry) error {
	f, err := os.Create(path) // #nosec G304 -- caller-controlled output path
	if err != nil {
		return fmt.Errorf("dump: create %s: %w", path, err)
	}
	defer f.Close()

	le, err := encodeCopy(entries, binary.LittleEndian, 0)
	if err != nil {
		return err
	}
	// Both copies encode the same counts and byte content, differing only
	// in the byte order of multi-byte fields, which never changes a
	// field's width; the two copies are therefore always equal length.
	binary.LittleEndian.PutUint32(le[4:8], uint32(len(le))&otherOffsetMask)

	be, err := encodeCopy(entries, binary.BigEndian, 0)
	if err != nil {
		return err
	}
	// be's "other copy" is le, which starts at offset 0 - already the
	// zero value encodeCopy wrote, so be needs no patch.

	if _, err := f.Write(le); err != nil {
		return fmt.Errorf("dump: write %s: %w", path, err)
	}
	if _, err := f.Write(be); err != nil {
		return fmt.Errorf("dump: write %s: %w", path, err)
	}
	return nil
}

// encodeCopy builds one complete copy of the file (header, directory,
// program words, string bytes) in the given byte order, with otherOffset
// recorded in the flags/offset word.
func encodeCopy(entries []Entry, order binary.ByteOrder, otherOffset uint32) ([]byte, error) {
	var progBuf, strsBuf bytes.Buffer
	recs := make([]dirRecord, len(entries))

	for i, e := range entries {
		rec := dirRecord{
			startWords: uint32(progBuf.Len() / 4),
			lenWords:   uint32(len(e.Prog.Words)),
			npats:      uint32(e.Prog.NumPatterns()),
			startStrsB: uint32(strsBuf.Len()),
			lenStrsB:   uint32(len(e.Prog.Strs)),
		}
		copy(rec.name[:], e.Name)
		recs[i] = rec

		for _, word := range e.Prog.Words {
			var b [4]byte
			order.PutUint32(b[:], uint32(word))
			progBuf.Write(b[:])
		}
		strsBuf.Write(e.Prog.Strs)
	}

	var out bytes.Buffer
	bw := &byteWriter{w: &out, order: order}
	bw.u32(magicWord)
	bw.u32(otherOffset & otherOffsetMask)
	bw.str(Version, versionSize)
	bw.u32(uint32(len(entries)))
	for _, rec := range recs {
		bw.raw(rec.name[:])
		bw.u32(rec.startWords)
		bw.u32(rec.lenWords)
		bw.u32(rec.npats)
		bw.u32(rec.startStrsB)
		bw.u32(rec.lenStrsB)
	}
	bw.raw(progBuf.Bytes())
	bw.raw(strsBuf.Bytes())
	if bw.err != nil {
		return nil, bw.err
	}
	return out.Bytes(), nil
}

type byteWriter struct {
	w     io.Writer
	order binary.ByteOrder
	err   error
}

func (bw *byteWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	var b [4]byte
	bw.order.PutUint32(b[:], v)
	_, bw.err = bw.w.Write(b[:])
}

func (bw *byteWriter) str(s string, size int) {
	b := make([]byte, size)
	copy(b, s)
	bw.raw(b)
}

func (bw *byteWriter) raw(b []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(b)
}

// Read loads every entry from the dump file at path with a plain read,
// preferring whichever of the two copies matches the host's native byte
// order. Use Open for the mmap-backed path.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-controlled input path
	if err != nil {
		return nil, fmt.Errorf("dump: read %s: %w", path, err)
	}
	order, start, err := locateCopy(data)
	if err != nil {
		return nil, err
	}
	return decode(data[start:], order, nil)
}

// detectMagicOrder reports which byte order, if either, makes the 4 bytes
// at data[pos:pos+4] read back as magicWord.
func detectMagicOrder(data []byte, pos int) (binary.ByteOrder, error) {
	if pos < 0 || pos+4 > len(data) {
		return nil, fmt.Errorf("dump: file too short")
	}
	switch {
	case binary.LittleEndian.Uint32(data[pos:pos+4]) == magicWord:
		return binary.LittleEndian, nil
	case binary.BigEndian.Uint32(data[pos:pos+4]) == magicWord:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("dump: bad magic, not a dump file")
}

// locateCopy finds the copy of data matching the host's native byte order.
// It first checks offset 0; if that copy is in the other order, it follows
// the "other copy" offset recorded in that copy's header word 1. Falls
// back to whatever copy it already found if the other-copy offset is
// unreadable, since either copy decodes correctly regardless of host
// order.
func locateCopy(data []byte) (order binary.ByteOrder, start int, err error) {
	order, err = detectMagicOrder(data, 0)
	if err != nil {
		return nil, 0, err
	}
	if binary.NativeEndian.Uint32(data[0:4]) == magicWord {
		return order, 0, nil
	}
	other := int(order.Uint32(data[4:8]) & otherOffsetMask)
	if otherOrder, oerr := detectMagicOrder(data, other); oerr == nil {
		return otherOrder, other, nil
	}
	return order, 0, nil
}

func decode(data []byte, order binary.ByteOrder, release func()) ([]Entry, error) {
	r := &byteReader{data: data, order: order}
	_ = r.u32() // magic, already validated
	_ = r.u32() // other-copy offset, not needed once a copy is located
	if v := r.str(versionSize); r.err == nil && v != Version {
		return nil, fmt.Errorf("dump: version mismatch: file has %q, want %q", v, Version)
	}
	n := r.u32()

	type parsed struct {
		name                                           string
		startWords, lenWords, npats, startS, lenS uint32
	}
	recs := make([]parsed, n)
	for i := range recs {
		name := trimName(r.raw(nameSize))
		recs[i] = parsed{
			name:       name,
			startWords: r.u32(),
			lenWords:   r.u32(),
			npats:      r.u32(),
			startS:     r.u32(),
			lenS:       r.u32(),
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	progStart := r.pos
	var maxProgEnd, maxStrsEnd uint32
	for _, rec := range recs {
		if e := rec.startWords*4 + rec.lenWords*4; e > maxProgEnd {
			maxProgEnd = e
		}
		if e := rec.startS + rec.lenS; e > maxStrsEnd {
			maxStrsEnd = e
		}
	}
	strsStart := progStart + int(maxProgEnd)

	entries := make([]Entry, n)
	for i, rec := range recs {
		words := make([]wordcode.Word, rec.lenWords)
		base := progStart + int(rec.startWords)*4
		for j := range words {
			off := base + j*4
			words[j] = wordcode.Word(order.Uint32(data[off : off+4]))
		}
		// Strings need no byte-swapping, so unlike Words they are kept as a
		// direct view into data rather than copied: for a mapped dump file
		// this slice aliases the mapped pages for as long as the resulting
		// Program lives, which is what release (munmap) ultimately guards.
		strsOff := strsStart + int(rec.startS)
		strs := data[strsOff : strsOff+int(rec.lenS)]

		pats := patterns.NewTable()
		for k := uint32(0); k < rec.npats; k++ {
			pats.Reserve("")
		}

		prog := program.FromMapped(words, strs, pats, release)
		if release == nil {
			prog.Alloc = program.Real // plain read: strs re-slices the file buffer
		}
		entries[i] = Entry{Name: rec.name, Prog: prog}
	}
	return entries, nil
}

func trimName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

type byteReader struct {
	data  []byte
	order binary.ByteOrder
	pos   int
	err   error
}

func (r *byteReader) u32() uint32 {
	if r.err != nil || r.pos+4 > len(r.data) {
		r.err = fmt.Errorf("dump: truncated file")
		return 0
	}
	v := r.order.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *byteReader) str(size int) string {
	return trimName(r.raw(size))
}

func (r *byteReader) raw(n int) []byte {
	if r.err != nil || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("dump: truncated file")
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// loaderGroup deduplicates concurrent Open calls for the same path so two
// goroutines racing to load the same autoloadable function's dump file
// share one mmap instead of racing two independent ones.
var loaderGroup singleflight.Group

// Open loads a dump file, mmap'ing it when its size is at or above
// mapThreshold (otherwise a plain read is used, since there is nothing to
// gain from mapping a file this small).
func Open(path string, mapThreshold int) ([]Entry, error) {
	v, err, _ := loaderGroup.Do(path, func() (any, error) {
		return openOnce(path, mapThreshold)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}

func openOnce(path string, mapThreshold int) ([]Entry, error) {
	f, err := os.Open(path) // #nosec G304 -- caller-controlled input path
	if err != nil {
		return nil, fmt.Errorf("dump: open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("dump: stat %s: %w", path, err)
	}
	if int(st.Size()) < mapThreshold {
		return Read(path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return Read(path) // fall back to a plain read if mmap isn't available
	}

	order, start, err := locateCopy(data)
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}

	// Every decoded entry's Strs aliases the mapping, so it is unmapped only
	// once the last of those Programs has been released.
	var mu sync.Mutex
	live := 0
	release := func() {
		mu.Lock()
		defer mu.Unlock()
		if live--; live == 0 {
			unix.Munmap(data)
		}
	}
	entries, err := decode(data[start:], order, release)
	if live = len(entries); err != nil || live == 0 {
		unix.Munmap(data)
	}
	return entries, err
}
