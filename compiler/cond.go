package compiler

import (
	"strings"

	"github.com/ashwinvis/zsh/lexer"
	"github.com/ashwinvis/zsh/wordcode"
)

// unaryTestOps is the set of single-operand `-X` test flags recognized by
// the `[[ ... ]]` dialect (file tests, string tests, option/param tests).
var unaryTestOps = map[string]bool{
	"-n": true, "-z": true, "-f": true, "-d": true, "-e": true, "-r": true,
	"-w": true, "-x": true, "-s": true, "-L": true, "-h": true, "-p": true,
	"-S": true, "-b": true, "-c": true, "-g": true, "-u": true, "-k": true,
	"-o": true, "-v": true, "-R": true, "-t": true,
}

// binaryTestOps is the set of named infix `-X` modular test operators
// (STRING -op STRING), as opposed to the symbolic =/==/!=/</> forms.
var binaryTestOps = map[string]bool{
	"-nt": true, "-ot": true, "-ef": true,
	"-eq": true, "-ne": true, "-lt": true, "-gt": true, "-le": true, "-ge": true,
}

// symbolicKind maps the string-comparison symbols to their WC_COND
// sub-kind: "=" and "==" both mean string-equal; "!=" means not-equal; any
// other operator reports false. "<" and ">" are in neither this set nor
// binaryTestOps, so they are not parsed as comparison operators.
func symbolicKind(op string) (uint8, bool) {
	switch op {
	case "=", "==":
		return wordcode.CondStrEq, true
	case "!=":
		return wordcode.CondStrNEq, true
	}
	return 0, false
}

// parCondCmd compiles `[[ condor ]]` as the compound-command form.
func (c *CompileCtx) parCondCmd() bool {
	c.next() // consume '[['
	c.Mode.InCond = true
	c.pushCmd(CSCond)
	ok := c.parCondOr()
	c.Mode.InCond = false
	if !ok {
		return false
	}
	if c.Cur.Type != lexer.DRBracket {
		c.syntaxError("expected ']]'")
		return false
	}
	c.next()
	return true
}

// ParseCond compiles a standalone condition: the form a `test`/`[`
// builtin implementation would drive directly.
func (c *CompileCtx) ParseCond() bool {
	c.Mode.InCond = true
	ok := c.parCondOr()
	c.Mode.InCond = false
	return ok
}

func (c *CompileCtx) parCondOr() bool {
	left := c.Buf.Len()
	if !c.parCondAnd() {
		return false
	}
	for c.Cur.Type == lexer.DBar {
		p := left
		c.Buf.Insert(p, 1)
		c.next()
		c.skipNewlines()
		if !c.parCondAnd() {
			c.syntaxError("expected condition after '||'")
			return false
		}
		c.Buf.Set(p, wordcode.Cond(wordcode.CondOr, uint32(c.Buf.Len()-1-p)))
	}
	return true
}

func (c *CompileCtx) parCondAnd() bool {
	left := c.Buf.Len()
	if !c.parCondNot() {
		return false
	}
	for c.Cur.Type == lexer.DAmper {
		p := left
		c.Buf.Insert(p, 1)
		c.next()
		c.skipNewlines()
		if !c.parCondNot() {
			c.syntaxError("expected condition after '&&'")
			return false
		}
		c.Buf.Set(p, wordcode.Cond(wordcode.CondAnd, uint32(c.Buf.Len()-1-p)))
	}
	return true
}

func (c *CompileCtx) parCondNot() bool {
	if c.Cur.Type == lexer.Bang {
		p := c.Buf.Reserve()
		c.next()
		if !c.parCondNot() {
			c.abandon(p)
			return false
		}
		c.Buf.Set(p, wordcode.Cond(wordcode.CondNot, uint32(c.Buf.Len()-1-p)))
		return true
	}
	return c.parCondPrimary()
}

// parCondPrimary compiles one leaf condition: a parenthesized
// sub-expression, a unary `-X operand` test, a `lhs OP rhs` string or
// modular test, or, when none of those match, an implicit `-n word`
// non-empty-string test, matching the real testlex convenience for
// `[[ $x ]]`-style truthiness checks.
func (c *CompileCtx) parCondPrimary() bool {
	if c.Cur.Type == lexer.LParen {
		c.next()
		if !c.parCondOr() {
			return false
		}
		if c.Cur.Type != lexer.RParen {
			c.syntaxError("expected ')' in condition")
			return false
		}
		c.next()
		return true
	}

	if c.Cur.Type != lexer.Word && c.Cur.Type != lexer.Name {
		c.syntaxError("expected condition")
		return false
	}
	tok1 := c.Cur.Literal
	c.next()

	if unaryTestOps[tok1] {
		if c.Cur.Type != lexer.Word && c.Cur.Type != lexer.Name {
			c.syntaxError("expected operand after " + tok1)
			return false
		}
		operand := c.Cur.Literal
		c.next()
		c.Buf.Add(wordcode.Cond(wordcode.CondUnary, 0))
		c.addString(strings.TrimPrefix(tok1, "-"))
		c.addString(operand)
		return true
	}

	switch c.Cur.Type {
	case lexer.Word, lexer.Name:
		op := c.Cur.Literal
		if kind, ok := symbolicKind(op); ok {
			c.next()
			rhs := c.wordLiteral()
			c.Buf.Add(wordcode.Cond(kind, 0))
			c.addString(tok1)
			c.addString(rhs)
			slot := c.Patterns.Reserve(rhs)
			c.Buf.Add(wordcode.Raw(uint32(slot)))
			return true
		}
		if binaryTestOps[op] {
			c.next()
			rhs := c.wordLiteral()
			c.Buf.Add(wordcode.Cond(wordcode.CondBinary, 0))
			c.addString(strings.TrimPrefix(op, "-"))
			c.addString(tok1)
			c.addString(rhs)
			return true
		}
	}

	c.Buf.Add(wordcode.Cond(wordcode.CondUnary, 0))
	c.addString("n")
	c.addString(tok1)
	return true
}
