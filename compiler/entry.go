package compiler

import (
	"github.com/ashwinvis/zsh/diag"
	"github.com/ashwinvis/zsh/lexer"
)

// Result is what a compile produced: the CompileCtx it ran in and whether
// it succeeded. Ctx holds the word-code buffer, its string pool, the
// reserved-but-not-yet-filled pattern table, and the diagnostics collected
// along the way; program.Build consumes Ctx.Buf, Ctx.Pool and Ctx.Patterns.
type Result struct {
	Ctx *CompileCtx
	Ok  bool
}

// ParseList compiles every event in src until EOF. It stops at the first
// event that fails to compile; the events after it are not parsed.
func (c *CompileCtx) ParseList() bool {
	any := false
	for c.Cur.Type != lexer.EOF {
		if !c.ParseEvent() {
			break
		}
		any = true
	}
	return any && !c.ErrFlag
}

// ParseString compiles a complete, self-contained script, wiring a fresh
// lexer.Scanner and CompileCtx together. useAliases is accepted for
// interface parity with the reference entry point but unused: alias
// expansion is an external collaborator's concern, out of scope here.
func ParseString(source, filename string, useAliases bool, severity diag.Severity) *Result {
	_ = useAliases
	mode := &lexer.Mode{}
	scanner := lexer.NewScanner(source, filename, mode)
	ctx := NewCompileCtx(scanner)
	ctx.NoErrs = severity
	ok := ctx.ParseList()
	return &Result{Ctx: ctx, Ok: ok}
}

// ParseOneEvent compiles a single top-level event from source, for callers
// that want to drive the compiler interactively one statement at a time.
func ParseOneEvent(source, filename string, severity diag.Severity) *Result {
	mode := &lexer.Mode{}
	scanner := lexer.NewScanner(source, filename, mode)
	ctx := NewCompileCtx(scanner)
	ctx.NoErrs = severity
	ok := ctx.ParseEvent()
	return &Result{Ctx: ctx, Ok: ok && !ctx.ErrFlag}
}
