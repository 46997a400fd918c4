package compiler

import (
	"github.com/ashwinvis/zsh/lexer"
	"github.com/ashwinvis/zsh/wordcode"
)

// isSep reports whether tok is one of the SEPER tokens (';' or newline)
// the grammar writes as a single terminal.
func isSep(t lexer.Token) bool {
	return t.Type == lexer.Semi || t.Type == lexer.Newline
}

// setListCode finalizes the WC_LIST header reserved at p, applying the
// simplification pass: a single synchronous sublist collapses its LIST
// header into Z_SIMPLE and drops the now-redundant SUBLIST header.
func (c *CompileCtx) setListCode(p int, typ uint8, complex bool) {
	sub := c.Buf.Get(p + 1)
	if !complex && (typ == wordcode.ZSync || typ == (wordcode.ZSync|wordcode.ZEnd)) &&
		sub.Kind() == wordcode.KSublist && wordcode.SublistType(sub.Flags()) == wordcode.SublistEnd {
		ispipe := wordcode.SublistFlags(sub.Flags())&wordcode.SublistSimple == 0
		skip := uint32(c.Buf.Len() - 2 - p)
		c.Buf.Set(p, wordcode.List(typ|wordcode.ZSimple, skip))
		c.Buf.Delete(p + 1)
		if ispipe {
			c.Buf.Set(p+1, wordcode.PipeLineno(c.Buf.Get(p+1)))
		}
	} else {
		skip := uint32(c.Buf.Len() - 1 - p)
		c.Buf.Set(p, wordcode.List(typ, skip))
	}
}

// setSublistCode finalizes the WC_SUBLIST header reserved at p, applying
// the same simplification one level down from setListCode: a single
// simple pipeline collapses its PIPE header into a bare line number.
func (c *CompileCtx) setSublistCode(p int, connective, flags uint8, skip uint32, complex bool) {
	if complex {
		c.Buf.Set(p, wordcode.Sublist(connective, flags, skip))
		return
	}
	c.Buf.Set(p, wordcode.Sublist(connective, flags|wordcode.SublistSimple, skip))
	pipe := c.Buf.Get(p + 1)
	c.Buf.Set(p+1, wordcode.PipeLineno(pipe))
}

// ParseEvent compiles one top-level event: { SEP } [ sublist [ SEP | AMPER
// | AMPERBANG ] ]. It leaves a trailing separator consumed iff present.
func (c *CompileCtx) ParseEvent() bool {
	for isSep(c.Cur) {
		c.next()
	}
	if c.Cur.Type == lexer.EOF {
		return false
	}

	p := c.Buf.Reserve()
	complex := false

	if c.parSublist(&complex) {
		switch c.Cur.Type {
		case lexer.EOF:
			c.setListCode(p, wordcode.ZSync, complex)
		case lexer.Semi, lexer.Newline:
			c.setListCode(p, wordcode.ZSync, complex)
			c.next()
		case lexer.Amper:
			c.setListCode(p, wordcode.ZAsync, complex)
			c.next()
		case lexer.AmperBang:
			c.setListCode(p, wordcode.ZAsync|wordcode.ZDisown, complex)
			c.next()
		default:
			c.setListCode(p, wordcode.ZSync, complex)
		}
		return true
	}

	c.abandon(p)
	if !c.ErrFlag {
		c.syntaxError("parse error")
	}
	return false
}

// ParseListBody compiles `list := { SEP } [ sublist [ (SEP|AMPER|AMPERBANG)
// list ] ]` into the buffer, iteratively rather than recursively so an
// arbitrarily long top-level script does not recurse the Go stack once
// per statement.
func (c *CompileCtx) ParseListBody(complex *bool) bool {
	lastHeader := -1
	any := false

	for {
		for isSep(c.Cur) {
			c.next()
		}

		p := c.Buf.Reserve()
		sc := false

		if !c.parSublist(&sc) {
			c.abandon(p)
			if lastHeader >= 0 {
				last := c.Buf.Get(lastHeader)
				c.Buf.Set(lastHeader, last.WithFlags(last.Flags()|wordcode.ZEnd))
				return true
			}
			return any
		}

		any = true
		*complex = *complex || sc

		switch c.Cur.Type {
		case lexer.Semi, lexer.Newline, lexer.Amper, lexer.AmperBang:
			typ := wordcode.ZSync
			if c.Cur.Type == lexer.Amper {
				typ = wordcode.ZAsync
			} else if c.Cur.Type == lexer.AmperBang {
				typ = wordcode.ZAsync | wordcode.ZDisown
				*complex = true
			}
			c.setListCode(p, typ, sc)
			c.Mode.InCmdPos = true
			for {
				c.next()
				if !isSep(c.Cur) {
					break
				}
			}
			lastHeader = p
			continue
		default:
			c.setListCode(p, wordcode.ZSync|wordcode.ZEnd, sc)
			return true
		}
	}
}

// ParseListBody1 compiles `list1 := sublist`, a list that always ends
// after a single sublist. parSaveBody calls it when single is true; the
// compound productions in this package all call parSaveBody with single
// false.
func (c *CompileCtx) ParseListBody1(complex *bool) bool {
	p := c.Buf.Reserve()
	sc := false
	if !c.parSublist(&sc) {
		c.abandon(p)
		return false
	}
	c.setListCode(p, wordcode.ZSync|wordcode.ZEnd, sc)
	*complex = *complex || sc
	return true
}

// parSaveBody parses a body with ParseListBody, appending an explicit
// WC_END if the body was empty: the par_save_list/par_save_list1 macros'
// policy, used everywhere a compound production's body must be
// self-delimiting even when empty.
func (c *CompileCtx) parSaveBody(complex *bool, single bool) {
	start := c.Buf.Len()
	ok := false
	if single {
		ok = c.ParseListBody1(complex)
	} else {
		ok = c.ParseListBody(complex)
	}
	if !ok || c.Buf.Len() == start {
		c.Buf.Add(wordcode.End())
	}
}

// parSublist compiles `sublist := sublist2 [ (DBAR|DAMPER) {SEP} sublist ]`.
func (c *CompileCtx) parSublist(complex *bool) bool {
	p := c.Buf.Reserve()
	c.Mode.InCmdPos = true

	f, ok := c.parSublist2(complex)
	if !ok {
		c.abandon(p)
		return false
	}
	e := c.Buf.Len()

	switch c.Cur.Type {
	case lexer.DBar, lexer.DAmper:
		qtok := c.Cur.Type
		if qtok == lexer.DBar {
			c.pushCmd(CSCmdOr)
		} else {
			c.pushCmd(CSCmdAnd)
		}
		c.next()
		for isSep(c.Cur) {
			c.next()
		}
		sl := c.parSublist(complex)
		connective := wordcode.SublistEnd
		if sl {
			if qtok == lexer.DBar {
				connective = wordcode.SublistOr
			} else {
				connective = wordcode.SublistAnd
			}
		}
		c.setSublistCode(p, connective, f, uint32(e-1-p), *complex)
	default:
		c.setSublistCode(p, wordcode.SublistEnd, f, uint32(e-1-p), *complex)
	}
	return true
}

// parSublist2 compiles `sublist2 := [ COPROC | BANG ] pline`.
func (c *CompileCtx) parSublist2(complex *bool) (uint8, bool) {
	var f uint8
	switch c.Cur.Type {
	case lexer.KwCoproc:
		*complex = true
		f |= wordcode.SublistCoproc
		c.next()
	case lexer.Bang:
		*complex = true
		f |= wordcode.SublistNot
		c.next()
	}
	if !c.parPline(complex) && f == 0 {
		return 0, false
	}
	return f, true
}

// parPline compiles `pline := cmd [ (BAR|BARAMP) {SEP} pline ]`, including
// the pipe splice and the synthetic |& merge-stderr redirection.
func (c *CompileCtx) parPline(complex *bool) bool {
	line := c.LineNo
	p := c.Buf.Reserve()

	if !c.parCmd(complex) {
		c.abandon(p)
		return false
	}

	switch c.Cur.Type {
	case lexer.Bar:
		*complex = true
		c.pushCmd(CSPipe)
		c.next()
		for isSep(c.Cur) {
			c.next()
		}
		c.Buf.Set(p, wordcode.Pipe(wordcode.PipeMid, line+1))
		c.Buf.Insert(p+1, 1)
		c.Buf.Set(p+1, wordcode.Raw(uint32(c.Buf.Len()-1-p)))
		c.parPline(complex)
		return true
	case lexer.BarAmp:
		r := p + 1
		for c.Buf.Get(r).Kind() == wordcode.KRedir {
			r += 3
		}
		c.Buf.Insert(r, 3)
		c.Buf.Set(r, wordcode.Redir(wordcode.RedirMergeOut))
		c.Buf.Set(r+1, wordcode.Raw(2))
		c.Buf.Set(r+2, c.Pool.AddString("1"))

		*complex = true
		c.pushCmd(CSErrPipe)
		c.next()
		c.Buf.Set(p, wordcode.Pipe(wordcode.PipeMid, line+1))
		c.Buf.Insert(p+1, 1)
		c.Buf.Set(p+1, wordcode.Raw(uint32(c.Buf.Len()-1-p)))
		c.parPline(complex)
		return true
	default:
		c.Buf.Set(p, wordcode.Pipe(wordcode.PipeEnd, line+1))
		return true
	}
}
