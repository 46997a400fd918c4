// Package patterns models the opaque pattern-program placeholder:
// case-pattern and [[ ... ]] string-equality tests reference a pattern by
// slot index rather than embedding a compiled pattern inline, so the
// program stays a flat, relocatable word-code block. The real pattern
// compiler is an external collaborator; Table only reserves and fills
// slots.
package patterns

// Pattern is the opaque handle a pattern compiler would eventually fill
// a slot with. It is left as a string (the uncompiled source pattern) so
// this module can be exercised without a real pattern engine attached;
// Compiler.Compile below is where an external implementation plugs in.
type Pattern struct {
	Source    string
	Compiled  bool
	Opaque    any // set by Compiler.Compile; nil until first executor touch
}

// Compiler is the consumed pattern-compilation interface. A pattern is
// not compiled until the executor first touches its slot.
type Compiler interface {
	Compile(source string) (any, error)
}

// dummyPattern is the shared placeholder Get returns for an index outside
// the table, matching the reference's dummy_patprog1. Reserved slots each
// get their own Pattern.
var dummyPattern = &Pattern{}

// Table owns the npats-sized side table a Program indexes into, keeping
// the placeholder-then-refill contract without storing raw pattern
// handles inline in the word-code itself.
type Table struct {
	slots []*Pattern
}

// NewTable returns an empty pattern table.
func NewTable() *Table { return &Table{} }

// Reserve allocates a new slot for source and returns its index.
func (t *Table) Reserve(source string) int {
	t.slots = append(t.slots, &Pattern{Source: source})
	return len(t.slots) - 1
}

// Len returns the number of reserved slots (ecnpats).
func (t *Table) Len() int { return len(t.slots) }

// Get returns the pattern at idx, or the shared placeholder if idx is out
// of range (should not happen for a well-formed program).
func (t *Table) Get(idx int) *Pattern {
	if idx < 0 || idx >= len(t.slots) {
		return dummyPattern
	}
	return t.slots[idx]
}

// Fill compiles the pattern at idx through c, caching the result. Safe to
// call more than once; subsequent calls are no-ops once Compiled is true.
func (t *Table) Fill(idx int, c Compiler) error {
	p := t.Get(idx)
	if p.Compiled {
		return nil
	}
	opaque, err := c.Compile(p.Source)
	if err != nil {
		return err
	}
	p.Opaque = opaque
	p.Compiled = true
	return nil
}

// Sources returns the uncompiled source text for every reserved slot, in
// slot order.
func (t *Table) Sources() []string {
	out := make([]string, len(t.slots))
	for i, p := range t.slots {
		out[i] = p.Source
	}
	return out
}
