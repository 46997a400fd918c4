package compiler

import (
	"strconv"

	"github.com/ashwinvis/zsh/lexer"
	"github.com/ashwinvis/zsh/wordcode"
)

// redirKind maps a lexer redirection token to its WC_REDIR sub-kind.
func redirKind(t lexer.Type) (uint8, bool) {
	switch t {
	case lexer.RedirIn:
		return wordcode.RedirRead, true
	case lexer.RedirOut:
		return wordcode.RedirWrite, true
	case lexer.RedirClobber:
		return wordcode.RedirWriteNow, true
	case lexer.RedirAppend:
		return wordcode.RedirAppend, true
	case lexer.RedirInOut:
		return wordcode.RedirReadWrite, true
	case lexer.RedirHeredoc:
		return wordcode.RedirHeredoc, true
	case lexer.RedirHeredocDash:
		return wordcode.RedirHeredocDash, true
	case lexer.RedirHereString:
		return wordcode.RedirHereString, true
	case lexer.RedirDupIn:
		return wordcode.RedirDupRead, true
	case lexer.RedirDupOut:
		return wordcode.RedirDupWrite, true
	}
	return 0, false
}

// parRedirs compiles `{ redir }`, emitting one 3-word REDIR/fd/target
// triple per operator, stopping at the first token that is not a
// redirection. The &> compound token expands to two REDIR triples
// (stdout then 2>&1), matching the reference's ">&" aliasing.
func (c *CompileCtx) parRedirs() bool {
	any := false
	for {
		if c.Cur.Type == lexer.RedirErrAndOut {
			c.next()
			target := c.wordLiteral()
			c.Buf.Add(wordcode.Redir(wordcode.RedirWrite))
			c.Buf.Add(wordcode.Raw(1))
			c.addString(target)
			c.Buf.Add(wordcode.Redir(wordcode.RedirMergeOut))
			c.Buf.Add(wordcode.Raw(2))
			c.addString("1")
			any = true
			continue
		}

		kind, ok := redirKind(c.Cur.Type)
		if !ok {
			return any
		}
		var fd int
		switch c.Cur.Type {
		case lexer.RedirIn, lexer.RedirDupIn, lexer.RedirInOut, lexer.RedirHeredoc,
			lexer.RedirHeredocDash, lexer.RedirHereString:
			fd = 0
		default:
			fd = 1
		}
		// An explicit digit immediately before the operator (2>&1, 2>file)
		// overrides the operator's default target fd.
		if c.Cur.Fd >= 0 {
			fd = c.Cur.Fd
		}
		c.next()
		target := c.wordLiteral()
		c.Buf.Add(wordcode.Redir(kind))
		c.Buf.Add(wordcode.Raw(uint32(fd)))
		c.addString(target)
		any = true
	}
}

// wordLiteral consumes the current token as a bare redirection target or
// command-word literal and advances past it, reporting a syntax error and
// returning "" if the current token cannot stand as one.
func (c *CompileCtx) wordLiteral() string {
	switch c.Cur.Type {
	case lexer.Word, lexer.Assignment, lexer.Name:
		lit := c.Cur.Literal
		c.next()
		return lit
	default:
		if n, err := strconv.Atoi(c.Cur.Literal); err == nil {
			c.next()
			return strconv.Itoa(n)
		}
		c.syntaxError("expected word")
		return ""
	}
}
