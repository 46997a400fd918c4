package compiler

import (
	"strings"

	"github.com/ashwinvis/zsh/lexer"
	"github.com/ashwinvis/zsh/wordcode"
)

// skipSep advances past any run of SEPER tokens (';' or newline).
func (c *CompileCtx) skipSep() {
	for isSep(c.Cur) {
		c.next()
	}
}

// expectKw consumes tok if present, reporting a syntax error otherwise.
func (c *CompileCtx) expectKw(tok lexer.Type, what string) bool {
	c.skipSep()
	if c.Cur.Type != tok {
		c.syntaxError("expected " + what)
		return false
	}
	c.next()
	return true
}

// parWordlist collects a run of bare words (used by `for NAME in ...` and
// `select NAME in ...`), stopping at the first non-word token.
func (c *CompileCtx) parWordlist() []string {
	c.Mode.InFor = true
	var out []string
	for c.Cur.Type == lexer.Word || c.Cur.Type == lexer.Name || c.Cur.Type == lexer.Assignment {
		out = append(out, c.Cur.Literal)
		c.next()
	}
	c.Mode.InFor = false
	return out
}

// arithText concatenates literal tokens up to (not including) stop,
// space-joined, standing in for the reference's read-ahead arithmetic
// lexer; arithmetic evaluation is treated as an external collaborator.
func (c *CompileCtx) arithText(stop lexer.Type) string {
	var sb strings.Builder
	for c.Cur.Type != stop && c.Cur.Type != lexer.EOF && c.Cur.Type != lexer.DRParen {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.Cur.Literal)
		c.next()
	}
	return sb.String()
}

// parFor compiles the three `for`/`foreach` forms: over a wordlist, over
// positional parameters, and the C-style `(( init; cond; step ))` header.
func (c *CompileCtx) parFor() bool {
	p := c.Buf.Reserve()
	foreach := c.Cur.Type == lexer.KwForeach
	c.next()

	if c.Cur.Type != lexer.Word && c.Cur.Type != lexer.Name {
		c.syntaxError("expected name after 'for'")
		return false
	}
	name := c.Cur.Literal
	c.next()
	c.addString(name)

	kind := wordcode.ForPParam
	switch {
	case c.Cur.Type == lexer.DLParen && !foreach:
		c.next()
		initS := c.arithText(lexer.Semi)
		c.expectKw(lexer.Semi, "';'")
		condS := c.arithText(lexer.Semi)
		c.expectKw(lexer.Semi, "';'")
		stepS := c.arithText(lexer.DRParen)
		if c.Cur.Type != lexer.DRParen {
			c.syntaxError("expected '))'")
			return false
		}
		c.next()
		kind = wordcode.ForCond
		c.addString(initS)
		c.addString(condS)
		c.addString(stepS)
	case c.Cur.Type == lexer.KwIn:
		c.next()
		kind = wordcode.ForList
		words := c.parWordlist()
		c.Buf.Add(wordcode.Raw(uint32(len(words))))
		for _, w := range words {
			c.addString(w)
		}
	default:
		c.Buf.Add(wordcode.Raw(0))
	}

	c.skipSep()
	if c.Cur.Type == lexer.Semi || c.Cur.Type == lexer.Newline {
		c.next()
		c.skipSep()
	}
	if !c.expectKw(lexer.KwDo, "'do'") {
		return false
	}
	c.pushCmd(CSFor)
	complex := false
	c.parSaveBody(&complex, false)
	if !c.expectKw(lexer.KwDone, "'done'") {
		return false
	}
	c.Buf.Set(p, wordcode.For(kind, uint32(c.Buf.Len()-1-p)))
	return true
}

// parSelect compiles `select NAME [in wordlist]; do list done`.
func (c *CompileCtx) parSelect() bool {
	p := c.Buf.Reserve()
	c.next()
	if c.Cur.Type != lexer.Word && c.Cur.Type != lexer.Name {
		c.syntaxError("expected name after 'select'")
		return false
	}
	c.addString(c.Cur.Literal)
	c.next()

	kind := wordcode.ForPParam
	if c.Cur.Type == lexer.KwIn {
		c.next()
		kind = wordcode.ForList
		words := c.parWordlist()
		c.Buf.Add(wordcode.Raw(uint32(len(words))))
		for _, w := range words {
			c.addString(w)
		}
	} else {
		c.Buf.Add(wordcode.Raw(0))
	}

	c.skipSep()
	if c.Cur.Type == lexer.Semi || c.Cur.Type == lexer.Newline {
		c.next()
		c.skipSep()
	}
	if !c.expectKw(lexer.KwDo, "'do'") {
		return false
	}
	c.pushCmd(CSSelect)
	complex := false
	c.parSaveBody(&complex, false)
	if !c.expectKw(lexer.KwDone, "'done'") {
		return false
	}
	c.Buf.Set(p, wordcode.Select(kind, uint32(c.Buf.Len()-1-p)))
	return true
}

// parIf compiles the `if ... then ... [elif ... then ...] [else ...] fi`
// chain as a sequence of WC_IF link words, each carrying a condition list
// immediately followed by its body list, terminated by a bare
// WC_IF(IfElse|IfHead with no condition) or the closing `fi`.
func (c *CompileCtx) parIf() bool {
	p0 := c.Buf.Reserve()
	c.next() // consume 'if'

	kind := wordcode.IfIf
	for {
		p := p0
		if kind != wordcode.IfIf {
			p = c.Buf.Reserve()
		}
		complex := false
		c.parSaveBody(&complex, false)
		if !c.expectKw(lexer.KwThen, "'then'") {
			return false
		}
		c.pushCmd(CSIf)
		c.parSaveBody(&complex, false)
		c.Buf.Set(p, wordcode.If(kind, uint32(c.Buf.Len()-1-p)))

		switch c.Cur.Type {
		case lexer.KwElif:
			c.next()
			kind = wordcode.IfElif
			continue
		case lexer.KwElse:
			c.next()
			pe := c.Buf.Reserve()
			complex2 := false
			c.parSaveBody(&complex2, false)
			c.Buf.Set(pe, wordcode.If(wordcode.IfElse, uint32(c.Buf.Len()-1-pe)))
		}
		break
	}
	if !c.expectKw(lexer.KwFi, "'fi'") {
		return false
	}
	return true
}

// parWhile compiles `(while|until) cond do list done`.
func (c *CompileCtx) parWhile() bool {
	p := c.Buf.Reserve()
	kind := wordcode.WhileWhile
	if c.Cur.Type == lexer.KwUntil {
		kind = wordcode.WhileUntil
	}
	c.next()
	complex := false
	c.parSaveBody(&complex, false)
	if !c.expectKw(lexer.KwDo, "'do'") {
		return false
	}
	c.pushCmd(CSWhile)
	c.parSaveBody(&complex, false)
	if !c.expectKw(lexer.KwDone, "'done'") {
		return false
	}
	c.Buf.Set(p, wordcode.While(kind, uint32(c.Buf.Len()-1-p)))
	return true
}

// parRepeat compiles `repeat word do list done`.
func (c *CompileCtx) parRepeat() bool {
	p := c.Buf.Reserve()
	c.next()
	if c.Cur.Type != lexer.Word && c.Cur.Type != lexer.Name {
		c.syntaxError("expected word after 'repeat'")
		return false
	}
	c.addString(c.Cur.Literal)
	c.next()
	if !c.expectKw(lexer.KwDo, "'do'") {
		return false
	}
	c.pushCmd(CSRepeat)
	complex := false
	c.parSaveBody(&complex, false)
	if !c.expectKw(lexer.KwDone, "'done'") {
		return false
	}
	c.Buf.Set(p, wordcode.Repeat(uint32(c.Buf.Len()-1-p)))
	return true
}

// parCase compiles `case word in { [(]pattern[|pattern...]) list (;;|;&) }
// esac`, one WC_CASE link per branch. Each branch lists its pattern count,
// then every pattern string followed by its pattern-slot index.
func (c *CompileCtx) parCase() bool {
	p0 := c.Buf.Reserve()
	c.next()
	if c.Cur.Type != lexer.Word && c.Cur.Type != lexer.Name {
		c.syntaxError("expected word after 'case'")
		return false
	}
	c.addString(c.Cur.Literal)
	c.next()
	c.skipSep()
	if !c.expectKw(lexer.KwIn, "'in'") {
		return false
	}
	c.pushCmd(CSCase)
	c.Buf.Set(p0, wordcode.Case(wordcode.CaseHead, 0))

	c.skipSep()
	for c.Cur.Type != lexer.KwEsac && c.Cur.Type != lexer.EOF {
		c.Mode.InCasePat = true
		if c.Cur.Type == lexer.LParen {
			c.next()
		}
		pats := []string{c.wordLiteral()}
		for c.Cur.Type == lexer.Bar {
			c.next()
			pats = append(pats, c.wordLiteral())
		}
		c.Mode.InCasePat = false
		if c.Cur.Type != lexer.RParen {
			c.syntaxError("expected ')' in case pattern")
			return false
		}
		c.next()

		p := c.Buf.Reserve()
		c.Buf.Add(wordcode.Raw(uint32(len(pats))))
		for _, pat := range pats {
			slot := c.Patterns.Reserve(pat)
			c.addString(pat)
			c.Buf.Add(wordcode.Raw(uint32(slot)))
		}
		complex := false
		c.skipSep()
		c.parSaveBody(&complex, false)

		link := wordcode.CaseOr
		switch c.Cur.Type {
		case lexer.DSemiAmp:
			link = wordcode.CaseAnd
			c.next()
		case lexer.DSemi:
			c.next()
		}
		c.Buf.Set(p, wordcode.Case(link, uint32(c.Buf.Len()-1-p)))
		c.skipSep()
	}
	if !c.expectKw(lexer.KwEsac, "'esac'") {
		return false
	}
	c.Buf.Set(p0, wordcode.Case(wordcode.CaseHead, uint32(c.Buf.Len()-1-p0)))
	return true
}

// parFuncdef compiles both `function NAME [NAME...] [()] { list }` and the
// bare `NAME() { list }` forms into a single WC_FUNCDEF wrapper that lists
// every name.
// A function body is a self-contained string sub-range: the string pool's
// nested-function scope is opened before the body and closed after, and
// the scope's base offset, byte length, and pattern count are written back
// into the three header words reserved right after the name list.
func (c *CompileCtx) parFuncdef(keyword bool) bool {
	p := c.Buf.Reserve()
	var names []string
	if keyword {
		c.next()
		for c.Cur.Type == lexer.Word || c.Cur.Type == lexer.Name {
			names = append(names, c.Cur.Literal)
			c.next()
		}
		if c.Cur.Type == lexer.LParen {
			c.next()
			if c.Cur.Type != lexer.RParen {
				c.syntaxError("expected ')'")
				return false
			}
			c.next()
		}
	} else {
		names = append(names, c.Cur.Literal)
		c.next()
		c.next() // '('
		if c.Cur.Type != lexer.RParen {
			c.syntaxError("expected ')'")
			return false
		}
		c.next()
	}
	c.skipSep()
	c.Buf.Add(wordcode.Raw(uint32(len(names))))
	for _, n := range names {
		c.addString(n)
	}

	baseIdx := c.Buf.Reserve()
	lenIdx := c.Buf.Reserve()
	npatsIdx := c.Buf.Reserve()

	savedSsub := c.Pool.EnterFunction()
	base := c.Pool.Base()
	patStart := c.Patterns.Len()

	c.pushCmd(CSFunc)
	if c.Cur.Type != lexer.LBrace {
		c.Pool.ExitFunction(savedSsub)
		c.syntaxError("expected '{'")
		return false
	}
	c.next()
	complex := false
	c.parSaveBody(&complex, false)
	if c.Cur.Type != lexer.RBrace {
		c.Pool.ExitFunction(savedSsub)
		c.syntaxError("expected '}'")
		return false
	}
	c.next()
	c.Buf.Add(wordcode.End())

	length := c.Pool.Offset() - base
	npats := uint32(c.Patterns.Len() - patStart)
	c.Pool.ExitFunction(savedSsub)

	c.Buf.Set(baseIdx, wordcode.Raw(base))
	c.Buf.Set(lenIdx, wordcode.Raw(length))
	c.Buf.Set(npatsIdx, wordcode.Raw(npats))

	c.Buf.Set(p, wordcode.Funcdef(uint32(c.Buf.Len()-1-p)))
	return true
}

// parTime compiles `time [pline]`.
func (c *CompileCtx) parTime() bool {
	c.next()
	switch c.Cur.Type {
	case lexer.Semi, lexer.Newline, lexer.EOF, lexer.Amper, lexer.DAmper, lexer.DBar:
		c.Buf.Add(wordcode.Timed(wordcode.TimedEmpty))
		return true
	default:
		p := c.Buf.Reserve()
		complex := false
		if !c.parSublist2(&complex) {
			c.abandon(p)
			c.syntaxError("expected command after 'time'")
			return false
		}
		c.Buf.Set(p, wordcode.Timed(wordcode.TimedPipe))
		return true
	}
}
