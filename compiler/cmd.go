package compiler

import (
	"strings"

	"github.com/ashwinvis/zsh/lexer"
	"github.com/ashwinvis/zsh/wordcode"
)

func isRedirTok(t lexer.Type) bool {
	if t == lexer.RedirErrAndOut {
		return true
	}
	_, ok := redirKind(t)
	return ok
}

// parCmd compiles `cmd := { redir } (compound | simple) { redir }`.
// Leading redirections attach to whatever command form follows; trailing
// ones are accepted after a compound command's body.
func (c *CompileCtx) parCmd(complex *bool) bool {
	start := c.Buf.Len()
	hadLeadingRedir := c.parRedirs()
	if hadLeadingRedir {
		*complex = true
	}

	if ok, isCompound := c.parCompound(complex); isCompound {
		if !ok {
			c.Buf.Truncate(start)
			return false
		}
		if c.parRedirs() {
			*complex = true
		}
		return true
	}

	if c.parSimple(complex) {
		return true
	}

	if hadLeadingRedir {
		return true
	}
	c.Buf.Truncate(start)
	return false
}

// parCompound dispatches on the current token to a compound command
// production. The second return reports whether the current token even
// looked like the start of a compound command; when false the caller
// falls through to parSimple.
func (c *CompileCtx) parCompound(complex *bool) (ok bool, isCompound bool) {
	prev := *complex
	*complex = true
	switch c.Cur.Type {
	case lexer.LBrace:
		return c.parBrace(), true
	case lexer.DLParen:
		return c.parDinpar(), true
	case lexer.LParen:
		return c.parSubsh(), true
	case lexer.KwFor, lexer.KwForeach:
		return c.parFor(), true
	case lexer.KwSelect:
		return c.parSelect(), true
	case lexer.KwCase:
		return c.parCase(), true
	case lexer.KwIf:
		return c.parIf(), true
	case lexer.KwWhile, lexer.KwUntil:
		return c.parWhile(), true
	case lexer.KwRepeat:
		return c.parRepeat(), true
	case lexer.KwFunction:
		return c.parFuncdef(true), true
	case lexer.KwTime:
		return c.parTime(), true
	case lexer.DLBracket:
		return c.parCondCmd(), true
	case lexer.Name, lexer.Word:
		if c.Peek.Type == lexer.LParen {
			return c.parFuncdef(false), true
		}
	}
	*complex = prev
	return false, false
}

// parBrace compiles `{ list }`.
func (c *CompileCtx) parBrace() bool {
	c.next()
	complex := false
	c.parSaveBody(&complex, false)
	if c.Cur.Type != lexer.RBrace {
		c.syntaxError("expected '}'")
		return false
	}
	c.next()
	return true
}

// parSubsh compiles `( list )` into a WC_SUBSH wrapper.
func (c *CompileCtx) parSubsh() bool {
	p := c.Buf.Reserve()
	c.next()
	c.Mode.InCmdPos = true
	complex := false
	c.parSaveBody(&complex, false)
	if c.Cur.Type != lexer.RParen {
		c.syntaxError("expected ')'")
		return false
	}
	c.next()
	c.Buf.Insert(p, 0)
	c.Buf.Set(p, wordcode.Subsh())
	return true
}

// parDinpar compiles `(( arith ))`, capturing the raw text between the
// parens as a single opaque string; arithmetic expression evaluation is
// an external collaborator's concern, not this compiler's.
func (c *CompileCtx) parDinpar() bool {
	c.next()
	var sb strings.Builder
	depth := 1
	for depth > 0 && c.Cur.Type != lexer.EOF {
		if c.Cur.Type == lexer.DRParen {
			depth--
			if depth == 0 {
				break
			}
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.Cur.Literal)
		c.next()
	}
	if c.Cur.Type != lexer.DRParen {
		c.syntaxError("expected '))'")
		return false
	}
	c.next()
	c.Buf.Add(wordcode.Arith())
	c.addString(sb.String())
	return true
}

// parAssignment compiles one `NAME=VALUE` prefix assignment.
func (c *CompileCtx) parAssignment() {
	lit := c.Cur.Literal
	c.next()
	name, value, _ := strings.Cut(lit, "=")
	c.Buf.Add(wordcode.Assign(wordcode.AssignScalar, 1))
	c.addString(name)
	c.addString(value)
}

// parSimple compiles `simple := { ASSIGNMENT | redir } [ STRING { STRING |
// redir } ]`. It reserves the WC_SIMPLE header only once the first word is
// seen (an assignment-only or redir-only "command" needs no SIMPLE header
// at all, matching the reference's cmd_is_null handling). Any redirection
// on the command, leading or trailing, marks the enclosing list complex.
func (c *CompileCtx) parSimple(complex *bool) bool {
	any := false

	for {
		switch {
		case c.Cur.Type == lexer.Assignment:
			c.parAssignment()
			any = true
		case isRedirTok(c.Cur.Type):
			c.parRedirs()
			*complex = true
			any = true
		default:
			goto words
		}
	}

words:
	if c.Cur.Type != lexer.Word && c.Cur.Type != lexer.Name {
		return any
	}

	p := c.Buf.Reserve()
	argc := 0
	for c.Cur.Type == lexer.Word || c.Cur.Type == lexer.Name || c.Cur.Type == lexer.Assignment || isRedirTok(c.Cur.Type) {
		if isRedirTok(c.Cur.Type) {
			c.parRedirs()
			*complex = true
			continue
		}
		c.addString(c.Cur.Literal)
		c.next()
		argc++
	}
	c.Buf.Set(p, wordcode.Simple(uint32(argc)))
	return true
}
