// Package compiler implements the recursive-descent parser and its
// conditional sub-parser: it drives a TokenSource, emits word-code into a
// wordcode.Buffer/StringPool, and back-patches forward skip-offsets as
// compound productions close.
package compiler

import (
	"github.com/ashwinvis/zsh/diag"
	"github.com/ashwinvis/zsh/lexer"
	"github.com/ashwinvis/zsh/patterns"
	"github.com/ashwinvis/zsh/wordcode"
)

// TokenSource is the external lexer handle: a blocking Next() call
// advances the token stream one token at a time. lexer.Scanner is the
// concrete implementation this module ships; any type exposing the same
// two methods can stand in (a string-backed test double, a future real
// tokenizer).
type TokenSource interface {
	Next() lexer.Token
	Mode() *lexer.Mode
}

// CmdStackEntry is one append-only trail entry: the reference
// implementation's process-wide command stack, replaced here with a
// simple append-only list on the context.
type CmdStackEntry int

const (
	CSCmdOr CmdStackEntry = iota
	CSCmdAnd
	CSPipe
	CSErrPipe
	CSFor
	CSSelect
	CSWhile
	CSRepeat
	CSCase
	CSIf
	CSSubsh
	CSCursh
	CSFunc
	CSCond
	CSCmd
)

// CompileCtx is the single mutable value threaded through every parser
// function, replacing the reference implementation's process-wide
// globals. Exactly one CompileCtx backs one compile; it is not safe for
// concurrent use.
type CompileCtx struct {
	Lexer TokenSource
	Mode  *lexer.Mode

	Buf      *wordcode.Buffer
	Pool     *wordcode.StringPool
	Patterns *patterns.Table

	Errors  *diag.List
	ErrFlag bool
	NoErrs  diag.Severity

	LineNo int
	Cur    lexer.Token
	Peek   lexer.Token

	// Trail is the append-only command-stack mirror: entries are pushed
	// as grammar context is entered and never popped, so post-mortem
	// diagnostics can show the full nesting a failed compile was in.
	Trail []CmdStackEntry
}

// NewCompileCtx wires src up for one compile.
func NewCompileCtx(src TokenSource) *CompileCtx {
	c := &CompileCtx{
		Lexer:    src,
		Mode:     src.Mode(),
		Buf:      wordcode.NewBuffer(),
		Pool:     wordcode.NewStringPool(),
		Patterns: patterns.NewTable(),
		Errors:   &diag.List{},
	}
	c.Mode.InCmdPos = true
	c.next()
	c.next()
	return c
}

func (c *CompileCtx) next() {
	c.Cur = c.Peek
	c.Peek = c.Lexer.Next()
	c.LineNo = c.Cur.Pos.Line
}

func (c *CompileCtx) pos() diag.Position {
	return diag.Position{Filename: c.Cur.Pos.Filename, Line: c.Cur.Pos.Line, Column: c.Cur.Pos.Column}
}

// pushCmd appends a trail entry; see CmdStackEntry.
func (c *CompileCtx) pushCmd(e CmdStackEntry) { c.Trail = append(c.Trail, e) }

// report records a diagnostic and applies the three-way noerrs policy the
// reference compiler's report()/noerrs pair implements.
func (c *CompileCtx) report(kind diag.Kind, msg, context string) {
	c.Errors.Add(diag.NewError(c.pos(), kind, msg, context), c.NoErrs)
	if c.NoErrs != diag.Silent {
		c.ErrFlag = true
	}
}

// syntaxError reports a SYNTAX error citing the current token's literal as
// context, truncated to 20 characters by diag.Error.Error.
func (c *CompileCtx) syntaxError(msg string) {
	c.report(diag.Syntax, msg, c.Cur.Literal)
}

// skipNewlines advances past any run of Newline tokens.
func (c *CompileCtx) skipNewlines() {
	for c.Cur.Type == lexer.Newline {
		c.next()
	}
}

// abandon truncates the buffer back to mark, discarding everything a
// failed production speculatively emitted.
func (c *CompileCtx) abandon(mark int) {
	c.Buf.Truncate(mark)
}

// addString interns s through the pool/inline encoders and appends the
// resulting reference word, returning its index.
func (c *CompileCtx) addString(s string) int {
	return c.Buf.Add(c.Pool.AddString(s))
}
